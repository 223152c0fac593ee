package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 仿真服务端的会话接口：开局 / 放出打击单元 / 查询状态
// 物理、探测与胜负判定全部由服务端权威决定，本层只调用

// SimulationStatus 仿真运行状态
type SimulationStatus string

const (
	StatusRunning  SimulationStatus = "RUNNING"
	StatusSuccess  SimulationStatus = "SUCCESS"
	StatusTimedOut SimulationStatus = "TIMED_OUT"
	StatusCanceled SimulationStatus = "CANCELED"
)

// Terminal 是否为终态
func (s SimulationStatus) Terminal() bool { return s != StatusRunning }

// StartResult 开局响应：仿真 ID、基地坐标与传感单元出生点
type StartResult struct {
	ID          string             `json:"id"`
	BasePos     WireVec            `json:"basePos"`
	SensorUnits map[UnitID]WireVec `json:"sensorUnits"`
}

// LaunchResult 打击单元放出响应
type LaunchResult struct {
	ID  UnitID  `json:"id"`
	Pos WireVec `json:"pos"`
}

// Session 一次已认证的仿真会话
type Session struct {
	serverAddr string
	token      string
	httpc      *http.Client
}

// NewSession 构造会话；token 为 bearer 令牌
func NewSession(serverAddr, token string) *Session {
	return &Session{
		serverAddr: serverAddr,
		token:      token,
		httpc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Start 开始一局新仿真
func (s *Session) Start() (*StartResult, error) {
	var out StartResult
	if err := s.call(http.MethodPost, "/api/simulation/start", nil, &out); err != nil {
		return nil, fmt.Errorf("start simulation: %w", err)
	}
	return &out, nil
}

// LaunchStrike 放出打击单元
func (s *Session) LaunchStrike(simID string) (*LaunchResult, error) {
	var out LaunchResult
	path := "/api/simulation/" + simID + "/strike"
	if err := s.call(http.MethodPost, path, nil, &out); err != nil {
		return nil, fmt.Errorf("launch strike unit: %w", err)
	}
	return &out, nil
}

// Status 查询仿真状态
func (s *Session) Status(simID string) (SimulationStatus, error) {
	var out struct {
		Status SimulationStatus `json:"status"`
	}
	path := "/api/simulation/" + simID + "/status"
	if err := s.call(http.MethodGet, path, nil, &out); err != nil {
		return "", fmt.Errorf("simulation status: %w", err)
	}
	return out.Status, nil
}

// OpenUnitStream 为某个单元建立双工控制流
func (s *Session) OpenUnitStream(simID string, unitID UnitID) (UnitStream, error) {
	return DialUnitStream(s.serverAddr, s.token, simID, unitID)
}

// call 发起一次带认证的 JSON 调用
func (s *Session) call(method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, "http://"+s.serverAddr+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
