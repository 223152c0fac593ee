package sim

// PID 单轴比例-积分-微分控制器；导航中 X / Y 各用一个实例
type PID struct {
	Kp float64
	Ki float64
	Kd float64

	integral  float64
	prevError float64
}

// 默认增益：比例为主、微分抑制振荡，积分项关闭（惯性环境下易积累漂移）
const (
	defaultKp = 0.3
	defaultKi = 0.0
	defaultKd = 0.15
)

// NewPID 以默认增益构造控制器
func NewPID() *PID {
	return &PID{Kp: defaultKp, Ki: defaultKi, Kd: defaultKd}
}

// Compute 根据当前误差计算控制输出；dt 以仿真 Tick 为单位（通常为 1）
func (p *PID) Compute(err, dt float64) float64 {
	p.integral += err * dt
	d := p.Kd * (err - p.prevError) / dt
	p.prevError = err
	return p.Kp*err + p.Ki*p.integral + d
}

// Reset 清零积分累计与上次误差（目标切换时必须调用，防止旧目标的积分残留）
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
}
