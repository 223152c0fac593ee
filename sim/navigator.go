package sim

import "go.uber.org/zap"

// 导航常量：速度估计按 Tick 位移放大到稳定的阻尼参考量级
const (
	velocityTickScale = 250.0
	arrivalThreshold  = 0.1  // 到达判定半径（世界单位）
	maxImpulse        = 10.0 // 单次冲量模长上限
	baseDamping       = 0.2  // 远距离基础阻尼
	proximityDamping  = 0.8  // 近距离追加阻尼（线性升至 1.0）
	dampingRange      = 15.0 // 阻尼随距离衰减的尺度
)

// Navigator 单元惯性导航控制器：维护位置历史、速度估计与双轴 PID，
// 输出朝向目标的限幅冲量；纯 PID 在惯性物理下会超调，
// 叠加随距离增强的速度阻尼可以压制目标附近的振荡
type Navigator struct {
	pos    Vec2
	hasPos bool
	vel    Vec2
	target Vec2
	hasTgt bool
	pidX   *PID
	pidY   *PID
	log    *zap.SugaredLogger
}

// NewNavigator 构造导航控制器；log 可为 nil（测试中直接构造）
func NewNavigator(log *zap.SugaredLogger) *Navigator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Navigator{pidX: NewPID(), pidY: NewPID(), log: log}
}

// UpdatePosition 记录新位置；已有历史位置时按位移推算速度估计
func (n *Navigator) UpdatePosition(p Vec2) {
	if n.hasPos {
		n.vel = p.Sub(n.pos).Scale(velocityTickScale)
	}
	n.pos = p
	n.hasPos = true
}

// Velocity 当前速度估计（不足两个位置样本时为零向量）
func (n *Navigator) Velocity() Vec2 { return n.vel }

// Position 最近一次上报的位置
func (n *Navigator) Position() Vec2 { return n.pos }

// Target 当前导航目标；第二返回值表示是否已设置
func (n *Navigator) Target() (Vec2, bool) { return n.target, n.hasTgt }

// SetTarget 设置导航目标；目标未变化时为 no-op，
// 变化时重置双轴 PID，保证控制器记忆始终对应当前目标
func (n *Navigator) SetTarget(t Vec2) {
	if n.hasTgt && n.target == t {
		return
	}
	n.target = t
	n.hasTgt = true
	n.pidX.Reset()
	n.pidY.Reset()
}

// Impulse 计算当前 Tick 应施加的冲量
// 到达目标时返回 -velocity 刹车冲量；否则为 PID 输出减去距离加权的速度阻尼，
// 模长超过 maxImpulse 时等比缩放
func (n *Navigator) Impulse() Vec2 {
	if !n.hasTgt || !n.hasPos {
		return Vec2{}
	}

	d := n.target.Sub(n.pos)
	dist := d.Len()

	if dist < arrivalThreshold {
		// 已到达：只抵消当前动量
		brake := n.vel.Scale(-1)
		n.log.Debugf("arrived at target, braking impulse=(%.2f, %.2f)", brake.X, brake.Y)
		return brake
	}

	controlX := n.pidX.Compute(d.X, 1)
	controlY := n.pidY.Compute(d.Y, 1)

	// 越接近目标阻尼越大，最高到 1.0
	proximity := 1.0 - dist/dampingRange
	if proximity < 0 {
		proximity = 0
	}
	damping := baseDamping + proximity*proximityDamping

	imp := Vec2{
		X: controlX - n.vel.X*damping,
		Y: controlY - n.vel.Y*damping,
	}

	if mag := imp.Len(); mag > maxImpulse {
		imp = imp.Scale(maxImpulse / mag)
	}

	n.log.Debugf("navigate: dist=%.2f impulse=(%.2f, %.2f)", dist, imp.X, imp.Y)
	return imp
}

// AtTarget 判断是否进入目标 threshold 半径内；threshold<=0 时用默认到达半径
func (n *Navigator) AtTarget(threshold float64) bool {
	if !n.hasTgt || !n.hasPos {
		return false
	}
	if threshold <= 0 {
		threshold = arrivalThreshold
	}
	return n.target.Sub(n.pos).Len() < threshold
}
