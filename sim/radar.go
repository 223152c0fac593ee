package sim

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// RadarView 可视化推送接口：本层只向外推，不读回任何数据
type RadarView interface {
	OnUnitPosition(id UnitID, x, y float64, color string)
	OnSightingDetected(x, y float64)
}

// NopRadar 空实现，无界面运行时使用
type NopRadar struct{}

func (NopRadar) OnUnitPosition(UnitID, float64, float64, string) {}
func (NopRadar) OnSightingDetected(float64, float64)             {}

// sightingFadeAfter 目击标记在雷达上的存留时长
const sightingFadeAfter = 2 * time.Second

// radarClient 负责发送（写）数据到某个 UI 客户端的轻量包装
type radarClient struct {
	ws   *websocket.Conn
	send chan []byte
}

// enqueue 将要发送的消息压入队列（非阻塞，满则丢弃旧状态）
func (c *radarClient) enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃：下一次状态推送会覆盖
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *radarClient) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// unitMark 雷达上的单元标记
type unitMark struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// sightingMark 雷达上的目击标记（2 秒后淡出）
type sightingMark struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	expires time.Time
}

// RadarHub 推送式雷达界面桥：聚合单元与目击状态，
// 每次更新后把完整快照广播给所有已连接的 UI 客户端
type RadarHub struct {
	mu        sync.Mutex
	clients   map[*radarClient]struct{}
	units     map[UnitID]unitMark
	sightings []sightingMark
	basePos   Vec2
	hasBase   bool
}

// NewRadarHub 构造雷达桥
func NewRadarHub() *RadarHub {
	return &RadarHub{
		clients: make(map[*radarClient]struct{}),
		units:   make(map[UnitID]unitMark),
	}
}

// SetBasePosition 设置基地坐标（开场一次）
func (h *RadarHub) SetBasePosition(x, y float64) {
	h.mu.Lock()
	h.basePos = Vec2{x, y}
	h.hasBase = true
	h.broadcastLocked()
	h.mu.Unlock()
}

// OnUnitPosition 更新某个单元的雷达标记
func (h *RadarHub) OnUnitPosition(id UnitID, x, y float64, color string) {
	h.mu.Lock()
	h.units[id] = unitMark{ID: string(id), X: x, Y: y, Color: color}
	h.broadcastLocked()
	h.mu.Unlock()
}

// OnSightingDetected 在雷达上标记一次目击（带淡出）
func (h *RadarHub) OnSightingDetected(x, y float64) {
	h.mu.Lock()
	h.sightings = append(h.sightings, sightingMark{X: x, Y: y, expires: time.Now().Add(sightingFadeAfter)})
	h.broadcastLocked()
	h.mu.Unlock()
}

// snapshotLocked 组装当前状态快照（调用方持锁）
func (h *RadarHub) snapshotLocked() []byte {
	// 顺带剔除已淡出的目击标记
	now := time.Now()
	kept := h.sightings[:0]
	for _, s := range h.sightings {
		if s.expires.After(now) {
			kept = append(kept, s)
		}
	}
	h.sightings = kept

	units := make([]unitMark, 0, len(h.units))
	for _, u := range h.units {
		units = append(units, u)
	}

	payload := struct {
		Type      string         `json:"type"`
		Units     []unitMark     `json:"units"`
		Sightings []sightingMark `json:"sightings"`
		BasePos   *Vec2          `json:"basePos,omitempty"`
	}{Type: "radar", Units: units, Sightings: h.sightings}
	if h.hasBase {
		payload.BasePos = &h.basePos
	}

	b, _ := json.Marshal(payload)
	return b
}

// broadcastLocked 把快照推给所有客户端（调用方持锁）
func (h *RadarHub) broadcastLocked() {
	if len(h.clients) == 0 {
		return
	}
	b := h.snapshotLocked()
	for c := range h.clients {
		c.enqueue(b)
	}
}

var radarUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 本地监控页面：允许所有来源
		return true
	},
}

// HandleWS 雷达 UI 的 WebSocket 接入；新客户端先收到当前快照
func (h *RadarHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := radarUpgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("radar upgrade error: %v", err)
		return
	}

	c := &radarClient{ws: ws, send: make(chan []byte, 64)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	c.enqueue(h.snapshotLocked())
	n := len(h.clients)
	h.mu.Unlock()
	Log.Infof("radar client connected, total %d", n)

	go c.writePump()

	// 读协程只用于发现断开；UI 不会上行任何数据
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			close(c.send)
			Log.Info("radar client disconnected")
		}()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
