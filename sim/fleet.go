package sim

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// 编队参数：传感单元的四个驻区角落与状态轮询周期
var sensorHomes = [4]Vec2{
	{50, 50},
	{-50, 50},
	{-50, -50},
	{50, -50},
}

const statusPollInterval = 5 * time.Second

// Fleet 编队编排：持有全部传感单元与打击单元，
// 负责开局、延时放出打击单元、轮询胜负状态与收尾
type Fleet struct {
	session *Session
	tuning  *Tuning
	metrics *FleetMetrics
	radar   RadarView

	simID   string
	sensors map[UnitID]*Unit
	strike  *Unit
}

// NewFleet 构造编队；radar 传 nil 时退化为无界面运行
func NewFleet(session *Session, tuning *Tuning, metrics *FleetMetrics, radar RadarView) *Fleet {
	if radar == nil {
		radar = NopRadar{}
	}
	return &Fleet{
		session: session,
		tuning:  tuning,
		metrics: metrics,
		radar:   radar,
		sensors: make(map[UnitID]*Unit),
	}
}

// Metrics 编队共享指标
func (f *Fleet) Metrics() *FleetMetrics { return f.metrics }

// Tuning 编队共享控制参数
func (f *Fleet) Tuning() *Tuning { return f.tuning }

// Run 跑完整个仿真：开局 → 启动传感单元 → 延时放出打击单元 →
// 轮询状态直至终态或 ctx 取消，最后停掉所有单元
func (f *Fleet) Run(ctx context.Context, strikeDelay time.Duration) error {
	start, err := f.session.Start()
	if err != nil {
		return err
	}
	f.simID = start.ID
	Log.Infof("simulation %s started, base at (%.2f, %.2f), %d sensor units",
		start.ID, start.BasePos.X, start.BasePos.Y, len(start.SensorUnits))

	if hub, ok := f.radar.(*RadarHub); ok {
		hub.SetBasePosition(start.BasePos.X, start.BasePos.Y)
	}

	if err := f.startSensors(start); err != nil {
		f.StopAll()
		return err
	}
	defer f.StopAll()

	g, ctx := errgroup.WithContext(ctx)

	// 延时放出打击单元
	g.Go(func() error {
		if strikeDelay > 0 {
			Log.Infof("sensors active, launching strike unit in %s", strikeDelay)
			select {
			case <-time.After(strikeDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return f.launchStrike()
	})

	// 轮询仿真状态直至终态
	g.Go(func() error {
		ticker := time.NewTicker(statusPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				status, err := f.session.Status(f.simID)
				if err != nil {
					Log.Warnf("status poll failed: %v", err)
					continue
				}
				Log.Infof("simulation status: %s", status)
				if status.Terminal() {
					Log.Infof("simulation ended with status %s", status)
					return nil
				}
			}
		}
	})

	return g.Wait()
}

// startSensors 按出生点创建并启动全部传感单元
// 驻区角落按单元 ID 的稳定顺序分配，保证四角均有人巡逻
func (f *Fleet) startSensors(start *StartResult) error {
	ids := make([]string, 0, len(start.SensorUnits))
	for id := range start.SensorUnits {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	for i, id := range ids {
		unitID := UnitID(id)
		spawn := start.SensorUnits[unitID]
		stream, err := f.session.OpenUnitStream(f.simID, unitID)
		if err != nil {
			return err
		}
		u := NewUnit(UnitConfig{
			ID:       unitID,
			Role:     "sensor",
			Home:     sensorHomes[i%len(sensorHomes)],
			HomeBias: true,
			Patrol:   SensorPatrolOffsets,
			Color:    "#4da6ff",
			Start:    Vec2{spawn.X, spawn.Y},
		}, stream, f.tuning, f.metrics, f.radar)
		f.sensors[unitID] = u
		u.Start()
	}
	return nil
}

// launchStrike 放出并启动打击单元；围绕原点的搜索方阵巡逻，无驻区偏置
func (f *Fleet) launchStrike() error {
	res, err := f.session.LaunchStrike(f.simID)
	if err != nil {
		return err
	}
	Log.Infof("strike unit %s launched at (%.2f, %.2f)", res.ID, res.Pos.X, res.Pos.Y)

	stream, err := f.session.OpenUnitStream(f.simID, res.ID)
	if err != nil {
		return err
	}
	f.strike = NewUnit(UnitConfig{
		ID:     res.ID,
		Role:   "strike",
		Home:   Vec2{0, 0},
		Patrol: StrikeSearchOffsets,
		Color:  "#ff4d4d",
		Start:  Vec2{res.Pos.X, res.Pos.Y},
	}, stream, f.tuning, f.metrics, f.radar)
	f.strike.Start()
	return nil
}

// StopAll 停掉全部单元；重复调用安全
func (f *Fleet) StopAll() {
	for _, u := range f.sensors {
		u.Stop()
	}
	if f.strike != nil {
		f.strike.Stop()
	}
}
