package sim

import "go.uber.org/zap"

// 行为常量：巡逻/打击的到达判定半径
const (
	attackArrivalRadius = 10.0 // 足够接近即视为已交战，回到巡逻
	patrolArrivalRadius = 2.5  // 巡逻点切换半径
	homeBiasWeight      = 0.2  // 传感单元对中继目标叠加的驻区偏置权重
)

// 巡逻方阵：围绕驻区角落的 4 个固定偏移，只向前循环
// 传感单元贴着驻区小范围巡逻，打击单元在基地周边拉开搜索方阵
var (
	SensorPatrolOffsets = [4]Vec2{
		{10, 10},
		{-10, 10},
		{-10, -10},
		{10, -10},
	}
	StrikeSearchOffsets = [4]Vec2{
		{20, 20},
		{-20, 20},
		{-20, -20},
		{20, -20},
	}
)

// Behavior 单元行为状态机：根据自身探测与中继目击决定导航目标，
// 在 Patrol 与 Attack 之间切换；全部状态由单元的生成协程独占，无需加锁
type Behavior struct {
	state    BehaviorState
	home     Vec2 // 驻区角落（打击单元为原点）
	homeBias bool // 仅传感单元：中继目标向驻区方向偏置，维持队形
	offsets  [4]Vec2
	wpIdx    int // 巡逻点下标，恒在 [0,4)
	nav      *Navigator
	log      *zap.SugaredLogger
}

// NewBehavior 构造行为状态机；初始为 Patrol，目标为第一个巡逻点
func NewBehavior(nav *Navigator, home Vec2, homeBias bool, offsets [4]Vec2, log *zap.SugaredLogger) *Behavior {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	b := &Behavior{
		state:    StatePatrol,
		home:     home,
		homeBias: homeBias,
		offsets:  offsets,
		nav:      nav,
		log:      log,
	}
	nav.SetTarget(b.waypoint())
	return b
}

// State 当前行为状态
func (b *Behavior) State() BehaviorState { return b.state }

// WaypointIndex 当前巡逻点下标
func (b *Behavior) WaypointIndex() int { return b.wpIdx }

// waypoint 当前巡逻点的绝对坐标
func (b *Behavior) waypoint() Vec2 {
	return b.home.Add(b.offsets[b.wpIdx])
}

// Step 每个 Tick 评估一次状态机
// detections 为本单元本 Tick 的探测样本，sightings 为已通过新鲜度过滤的中继目击；
// 先应用中继目击、后应用自身探测：自身传感直接以本机位置为基准换算，
// 比经过一跳中继的情报更可信，同 Tick 冲突时以自身探测为准。
// 返回需要向队友转发的目击（自身探测触发时），无则为 nil
func (b *Behavior) Step(detections []Detection, sightings []Sighting, now float64) *Sighting {
	var rebroadcast *Sighting

	// 先结算进行中的到达判定，再应用本 Tick 的触发；
	// 新触发的近距离目标不在同一 Tick 内被立即结算掉
	switch b.state {
	case StateAttack:
		// 足够接近目标即认为已交战，回到巡逻
		if b.nav.AtTarget(attackArrivalRadius) {
			b.state = StatePatrol
			b.nav.SetTarget(b.waypoint())
			b.log.Infof("target engaged, resuming patrol at waypoint %d", b.wpIdx)
		}
	case StatePatrol:
		if b.nav.AtTarget(patrolArrivalRadius) {
			b.wpIdx = (b.wpIdx + 1) % len(b.offsets)
			b.log.Infof("reached patrol point, next waypoint %d", b.wpIdx)
		}
		// SetTarget 对未变化目标是 no-op，安全地每 Tick 重申
		b.nav.SetTarget(b.waypoint())
	}

	// 中继目击：直接采用其绝对坐标，传感单元叠加驻区偏置
	for _, s := range sightings {
		target := s.Pos
		if b.homeBias {
			target = s.Pos.Add(b.home.Scale(homeBiasWeight))
		}
		if b.state != StateAttack {
			b.log.Infof("relayed sighting at (%.2f, %.2f), engaging", s.Pos.X, s.Pos.Y)
		}
		b.state = StateAttack
		b.nav.SetTarget(target)
	}

	// 自身探测：换算绝对坐标并立即转发，保证情报在不可靠信道上扩散
	for _, d := range detections {
		if !d.IsTarget() {
			continue
		}
		abs, ok := ResolveAbsolute(d.Direction, d.Distance, b.nav.Position())
		if !ok {
			// 未知方位按无探测处理
			continue
		}
		b.log.Infof("detected TARGET %s at %.2f, absolute (%.2f, %.2f)",
			d.Direction, d.Distance, abs.X, abs.Y)
		b.state = StateAttack
		b.nav.SetTarget(abs)
		rebroadcast = &Sighting{Pos: abs, Timestamp: now}
	}

	return rebroadcast
}
