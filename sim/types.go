package sim

import "math"

// UnitID 表示单元唯一标识（由服务端分配）
type UnitID string

// Vec2 世界坐标系中的二维向量 / 位置
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add 向量加法
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub 向量减法
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale 标量缩放
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len 向量模长
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// DetectionClass 探测对象类别
type DetectionClass int

const (
	ClassUnknown DetectionClass = iota
	ClassObstacle
	ClassTarget
)

// Detection 单次方向探测样本（一个 Tick 内消费，不保留）
type Detection struct {
	Direction Direction
	Class     DetectionClass
	Distance  float64
}

// IsTarget 是否为需要打击的目标
func (d Detection) IsTarget() bool { return d.Class == ClassTarget }

// Sighting 目标目击报告：绝对坐标 + 墙钟时间戳（秒），用于跨单元传播
type Sighting struct {
	Pos       Vec2
	Timestamp float64
}

// BehaviorState 单元行为状态
type BehaviorState int

const (
	StatePatrol BehaviorState = iota
	StateAttack
)

// String 便于日志输出
func (s BehaviorState) String() string {
	switch s {
	case StatePatrol:
		return "PATROL"
	case StateAttack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}
