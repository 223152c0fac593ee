package sim

import (
	"encoding/json"
	"strings"
)

// 单元控制流的 JSON 帧格式（WebSocket 文本消息，双向）
// 入站：服务端状态帧；出站：thrust / msg 二选一的指令帧

// WireVec JSON 线上的二维向量
type WireVec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WireDetection 单方向探测样本
type WireDetection struct {
	Class    WireClass `json:"class"`
	Distance float64   `json:"distance"`
}

// WireClass 探测类别；服务端历史上用过数字枚举与文本两种编码，都接受
type WireClass struct {
	Value DetectionClass
}

// UnmarshalJSON 兼容 0/1 数字与 "OBSTACLE"/"TARGET" 文本两种编码
func (c *WireClass) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		switch n {
		case 0:
			c.Value = ClassObstacle
		case 1:
			c.Value = ClassTarget
		default:
			c.Value = ClassUnknown
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch strings.ToUpper(s) {
		case "OBSTACLE":
			c.Value = ClassObstacle
		case "TARGET":
			c.Value = ClassTarget
		default:
			c.Value = ClassUnknown
		}
		return nil
	}
	// 编码不认识：按未知类别处理，不让一帧坏数据中断整个流
	c.Value = ClassUnknown
	return nil
}

// WireMessage 中继消息：来源单元 + 不透明载荷（可能被多层信封包裹）
type WireMessage struct {
	Src   string          `json:"src"`
	Value json.RawMessage `json:"value"`
}

// UnitResponse 服务端下发的单元状态帧
type UnitResponse struct {
	Pos        WireVec                      `json:"pos"`
	Detections map[Direction]*WireDetection `json:"detections,omitempty"`
	Messages   []WireMessage                `json:"messages,omitempty"`
}

// ParseDetections 将状态帧中的探测字段整理为样本列表
// 未知方位、未知类别或负距离的样本一律跳过
func (r *UnitResponse) ParseDetections() []Detection {
	if len(r.Detections) == 0 {
		return nil
	}
	out := make([]Detection, 0, len(r.Detections))
	for _, dir := range AllDirections {
		wd, ok := r.Detections[dir]
		if !ok || wd == nil {
			continue
		}
		if wd.Class.Value == ClassUnknown || wd.Distance < 0 {
			continue
		}
		out = append(out, Detection{Direction: dir, Class: wd.Class.Value, Distance: wd.Distance})
	}
	return out
}

// ThrustCommand 推进指令
type ThrustCommand struct {
	Impulse WireVec `json:"impulse"`
}

// MsgCommand 广播指令（载荷为目击报告文本）
type MsgCommand struct {
	Value string `json:"value"`
}

// UnitCommand 出站指令帧：thrust 与 msg 互斥
type UnitCommand struct {
	Thrust *ThrustCommand `json:"thrust,omitempty"`
	Msg    *MsgCommand    `json:"msg,omitempty"`
}

// NewThrustCommand 构造推进指令帧
func NewThrustCommand(imp Vec2) UnitCommand {
	return UnitCommand{Thrust: &ThrustCommand{Impulse: WireVec{X: imp.X, Y: imp.Y}}}
}

// NewBroadcastCommand 构造广播指令帧
func NewBroadcastCommand(payload string) UnitCommand {
	return UnitCommand{Msg: &MsgCommand{Value: payload}}
}
