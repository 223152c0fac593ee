package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// 控制循环参数
const (
	responseQueueSize = 256
	stopJoinTimeout   = time.Second
)

// UnitConfig 单元构造参数
type UnitConfig struct {
	ID       UnitID
	Role     string // "sensor" / "strike"，用于日志命名与雷达着色
	Home     Vec2   // 驻区角落（打击单元为原点）
	HomeBias bool   // 中继目标是否向驻区偏置（仅传感单元）
	Patrol   [4]Vec2
	Color    string // 雷达标记颜色
	Start    Vec2   // 初始位置（服务端分配）
}

// Unit 单元控制循环驱动：一个读协程把入站状态帧压入 FIFO 队列，
// 一个生成协程按帧推进 导航/行为/广播 并产出出站指令流。
// 全部单元内状态由生成协程独占，线程间只经由队列传递
type Unit struct {
	id    UnitID
	role  string
	color string
	start Vec2

	stream   UnitStream
	queue    chan *UnitResponse
	running  atomic.Bool
	stopc    chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	nav      *Navigator
	behavior *Behavior
	tuning   *Tuning
	metrics  *FleetMetrics
	radar    RadarView
	log      *zap.SugaredLogger

	lastPayloadHash uint64 // 上一条消息载荷的哈希，识别背靠背的冗余重发
	lastThrust      UnitCommand

	// now 可注入，测试中替换墙钟
	now func() float64
}

// NewUnit 构造单元；tuning/metrics 由编队共享，radar 可为 NopRadar
func NewUnit(cfg UnitConfig, stream UnitStream, tuning *Tuning, metrics *FleetMetrics, radar RadarView) *Unit {
	log := UnitLogger(cfg.Role, cfg.ID)
	nav := NewNavigator(log)
	u := &Unit{
		id:       cfg.ID,
		role:     cfg.Role,
		color:    cfg.Color,
		start:    cfg.Start,
		stream:   stream,
		queue:    make(chan *UnitResponse, responseQueueSize),
		stopc:    make(chan struct{}),
		nav:      nav,
		behavior: NewBehavior(nav, cfg.Home, cfg.HomeBias, cfg.Patrol, log),
		tuning:   tuning,
		metrics:  metrics,
		radar:    radar,
		log:      log,
		now:      func() float64 { return float64(time.Now().UnixNano()) / 1e9 },
	}
	u.lastThrust = NewThrustCommand(Vec2{})
	return u
}

// Start 启动读协程与生成协程
func (u *Unit) Start() {
	if !u.running.CompareAndSwap(false, true) {
		return
	}
	// 出生点先上雷达，第一帧到达前界面不留空
	u.radar.OnUnitPosition(u.id, u.start.X, u.start.Y, u.color)
	u.wg.Add(2)
	go u.readPump()
	go u.commandLoop()
	u.log.Infof("%s unit %s started", u.role, u.id)
}

// signalStop 置停止标志、关闭流并唤醒所有阻塞点；幂等
func (u *Unit) signalStop() {
	u.running.Store(false)
	u.stopOnce.Do(func() {
		close(u.stopc)
		_ = u.stream.Close() // 解除 Recv 阻塞
	})
}

// Stop 请求停止并带超时地等待两个协程退出
// 已在途的指令不撤回
func (u *Unit) Stop() {
	u.signalStop()

	done := make(chan struct{})
	go func() {
		u.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopJoinTimeout):
		u.log.Warnf("unit %s stop timed out", u.id)
	}
}

// Running 控制循环是否仍在运行
func (u *Unit) Running() bool { return u.running.Load() }

// readPump 读协程：把入站状态帧按接收顺序压入队列
// 流错误仅终止本单元的循环，不影响其他单元
func (u *Unit) readPump() {
	defer u.wg.Done()
	defer close(u.queue)
	for u.running.Load() {
		resp, err := u.stream.Recv()
		if err != nil {
			if u.running.Load() {
				u.log.Errorf("stream receive failed: %v", err)
			}
			u.signalStop()
			return
		}
		select {
		case u.queue <- resp:
		case <-u.stopc:
			return
		}
	}
}

// commandLoop 生成协程：流打开后先发一条零冲量指令，
// 此后对每一帧依次执行 位置更新 → 消息解码 → 状态机评估 → 冲量计算与发送
func (u *Unit) commandLoop() {
	defer u.wg.Done()
	defer u.metrics.IncUnitsStopped()
	defer u.log.Infof("control loop for unit %s terminated", u.id)

	// 初始指令：让出站流非空地打开
	if err := u.sendThrust(Vec2{}); err != nil {
		u.signalStop()
		return
	}

	for u.running.Load() {
		var resp *UnitResponse
		select {
		case r, ok := <-u.queue:
			if !ok {
				return
			}
			resp = r
		case <-time.After(time.Duration(u.tuning.QueueWait()) * time.Millisecond):
			// 超时不是错误：重发上一条推进指令保活
			u.metrics.IncQueueWaitTimeouts()
			if err := u.send(u.lastThrust); err != nil {
				u.signalStop()
				return
			}
			continue
		}

		if err := u.step(resp); err != nil {
			u.log.Errorf("stream send failed: %v", err)
			u.signalStop()
			return
		}
	}
}

// step 处理一帧状态并发出本 Tick 的全部指令
func (u *Unit) step(resp *UnitResponse) error {
	u.metrics.IncResponses()
	now := u.now()

	pos := Vec2{resp.Pos.X, resp.Pos.Y}
	u.nav.UpdatePosition(pos)
	u.radar.OnUnitPosition(u.id, pos.X, pos.Y, u.color)

	detections := resp.ParseDetections()
	for _, d := range detections {
		if d.IsTarget() {
			u.metrics.IncTargetsDetected()
		}
	}

	sightings := u.decodeMessages(resp.Messages, now)

	if rb := u.behavior.Step(detections, sightings, now); rb != nil {
		u.radar.OnSightingDetected(rb.Pos.X, rb.Pos.Y)
		if err := u.sendBroadcast(*rb); err != nil {
			return err
		}
	}

	return u.sendThrust(u.nav.Impulse())
}

// decodeMessages 解码中继消息并做新鲜度过滤
// 解码失败与过期目击都是非致命的：计数、记日志、跳过
func (u *Unit) decodeMessages(msgs []WireMessage, now float64) []Sighting {
	if len(msgs) == 0 {
		return nil
	}
	window := u.tuning.FreshnessWindow()
	var out []Sighting
	for _, m := range msgs {
		if len(m.Value) == 0 {
			continue
		}
		// 冗余重发的相同载荷：接收端本就幂等，这里只计数并跳过重复解码
		h := PayloadHash(m.Value)
		if h == u.lastPayloadHash {
			u.metrics.IncSightingsDuplicate()
			continue
		}
		u.lastPayloadHash = h

		s, err := DecodeSighting(m.Value)
		if err != nil {
			u.metrics.IncDecodeFailures()
			u.log.Debugf("undecodable message from %s: %v", m.Src, err)
			continue
		}
		if !s.IsFresh(now, window) {
			u.metrics.IncSightingsStale()
			u.log.Debugf("stale sighting from %s, age %.2fs", m.Src, now-s.Timestamp)
			continue
		}
		u.metrics.IncSightingsFresh()
		u.radar.OnSightingDetected(s.Pos.X, s.Pos.Y)
		out = append(out, s)
	}
	return out
}

// sendThrust 按推进冗余系数发送冲量指令
func (u *Unit) sendThrust(imp Vec2) error {
	cmd := NewThrustCommand(imp)
	u.lastThrust = cmd
	n := u.tuning.ThrustRedundancy()
	for i := 0; i < n; i++ {
		if err := u.stream.Send(cmd); err != nil {
			return err
		}
	}
	u.metrics.AddThrusts(n)
	return nil
}

// sendBroadcast 按广播冗余系数重复发送同一载荷，对抗无送达保证的信道
func (u *Unit) sendBroadcast(s Sighting) error {
	cmd := NewBroadcastCommand(EncodeSighting(s))
	n := u.tuning.BroadcastRedundancy()
	for i := 0; i < n; i++ {
		if err := u.stream.Send(cmd); err != nil {
			return err
		}
	}
	u.metrics.AddBroadcasts(n)
	return nil
}

// send 原样发送一条指令（保活重发用）
func (u *Unit) send(cmd UnitCommand) error {
	return u.stream.Send(cmd)
}
