package sim

import "sync/atomic"

// Tuning 运行期可热更新的控制参数
// 各单元的生成协程每个 Tick 都会读取，admin 接口可能并发写入，故用原子量
type Tuning struct {
	broadcastRedundancy atomic.Int64
	thrustRedundancy    atomic.Int64
	freshnessWindowMs   atomic.Int64
	queueWaitMs         atomic.Int64
}

// 默认值：广播重发 3 次对抗无送达保证的信道，推进指令默认不重发；
// 两者独立可调，不把这种不对称写死
const (
	DefaultBroadcastRedundancy = 3
	DefaultThrustRedundancy    = 1
	DefaultQueueWaitMs         = 1000
)

// NewTuning 以默认参数构造
func NewTuning() *Tuning {
	t := &Tuning{}
	t.broadcastRedundancy.Store(DefaultBroadcastRedundancy)
	t.thrustRedundancy.Store(DefaultThrustRedundancy)
	t.freshnessWindowMs.Store(int64(DefaultFreshnessWindow * 1000))
	t.queueWaitMs.Store(DefaultQueueWaitMs)
	return t
}

// BroadcastRedundancy 单条逻辑广播的重发次数
func (t *Tuning) BroadcastRedundancy() int { return int(t.broadcastRedundancy.Load()) }

// ThrustRedundancy 单条推进指令的重发次数
func (t *Tuning) ThrustRedundancy() int { return int(t.thrustRedundancy.Load()) }

// FreshnessWindow 目击报告可信窗口（秒）
func (t *Tuning) FreshnessWindow() float64 { return float64(t.freshnessWindowMs.Load()) / 1000 }

// QueueWait 生成协程等待下一帧的超时
func (t *Tuning) QueueWait() int64 { return t.queueWaitMs.Load() }

// SetBroadcastRedundancy 热更新广播重发次数（最小 1）
func (t *Tuning) SetBroadcastRedundancy(n int) {
	if n < 1 {
		n = 1
	}
	t.broadcastRedundancy.Store(int64(n))
}

// SetThrustRedundancy 热更新推进重发次数（最小 1）
func (t *Tuning) SetThrustRedundancy(n int) {
	if n < 1 {
		n = 1
	}
	t.thrustRedundancy.Store(int64(n))
}

// SetFreshnessWindowMs 热更新新鲜度窗口（毫秒）
func (t *Tuning) SetFreshnessWindowMs(ms int64) {
	if ms < 1 {
		ms = 1
	}
	t.freshnessWindowMs.Store(ms)
}

// SetQueueWaitMs 热更新队列等待超时（毫秒）
func (t *Tuning) SetQueueWaitMs(ms int64) {
	if ms < 1 {
		ms = 1
	}
	t.queueWaitMs.Store(ms)
}
