package sim

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// UnitStream 单元双工控制流：Recv 读服务端状态帧，Send 写指令帧
// 流错误对拥有它的单元是致命的，本层不做重连
type UnitStream interface {
	Recv() (*UnitResponse, error)
	Send(cmd UnitCommand) error
	Close() error
}

// wsUnitStream 基于 WebSocket 的控制流实现
type wsUnitStream struct {
	ws *websocket.Conn
}

const streamWriteTimeout = 5 * time.Second

// DialUnitStream 建立某个单元的已认证控制流
// 握手头携带 bearer 令牌与 simulation/unit 标识
func DialUnitStream(serverAddr, token string, simID string, unitID UnitID) (UnitStream, error) {
	u := url.URL{Scheme: "ws", Host: serverAddr, Path: "/api/unit/control"}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("X-Simulation-Id", simID)
	header.Set("X-Unit-Id", string(unitID))

	ws, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(1 << 20) // 1MB
	return &wsUnitStream{ws: ws}, nil
}

// Recv 阻塞读取下一帧状态；连接关闭或畸形帧返回错误
func (s *wsUnitStream) Recv() (*UnitResponse, error) {
	_, payload, err := s.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	var resp UnitResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Send 序列化并写出一条指令帧
func (s *wsUnitStream) Send(cmd UnitCommand) error {
	b, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	_ = s.ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return s.ws.WriteMessage(websocket.TextMessage, b)
}

// Close 关闭底层连接（同时解除 Recv 的阻塞）
func (s *wsUnitStream) Close() error {
	return s.ws.Close()
}
