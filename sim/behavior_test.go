package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPatrolBehavior(home Vec2, homeBias bool) (*Behavior, *Navigator) {
	nav := NewNavigator(nil)
	b := NewBehavior(nav, home, homeBias, SensorPatrolOffsets, nil)
	return b, nav
}

func TestBehaviorStartsInPatrol(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{50, 50}, true)
	assert.Equal(t, StatePatrol, b.State())
	tgt, ok := nav.Target()
	require.True(t, ok)
	assert.Equal(t, Vec2{60, 60}, tgt) // 驻区角落 + 第一个巡逻偏移
}

func TestPatrolWaypointCycling(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{0, 0}, false)
	require.Equal(t, 0, b.WaypointIndex())

	// 连续四次到达巡逻点，下标 0→1→2→3→0 回绕
	for _, want := range []int{1, 2, 3, 0} {
		tgt, _ := nav.Target()
		nav.UpdatePosition(tgt)
		b.Step(nil, nil, 0)
		assert.Equal(t, want, b.WaypointIndex())
		assert.Equal(t, StatePatrol, b.State())
	}
}

func TestPatrolToAttackOnOwnDetection(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{50, 50}, true)
	nav.UpdatePosition(Vec2{0, 0})

	det := []Detection{{Direction: DirNorth, Class: ClassTarget, Distance: 5}}
	rb := b.Step(det, nil, 123.0)

	assert.Equal(t, StateAttack, b.State())
	require.NotNil(t, rb, "own detection must be re-broadcast")
	assert.InDelta(t, 0.0, rb.Pos.X, 1e-9)
	assert.InDelta(t, 5.0, rb.Pos.Y, 1e-9)
	assert.Equal(t, 123.0, rb.Timestamp)

	tgt, _ := nav.Target()
	assert.InDelta(t, 0.0, tgt.X, 1e-9)
	assert.InDelta(t, 5.0, tgt.Y, 1e-9)
}

func TestPatrolToAttackOnRelayedSighting(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{50, 50}, false)
	nav.UpdatePosition(Vec2{0, 0})

	rb := b.Step(nil, []Sighting{{Pos: Vec2{30, 40}, Timestamp: 1}}, 1)
	assert.Equal(t, StateAttack, b.State())
	assert.Nil(t, rb, "relayed sightings are not re-broadcast")

	tgt, _ := nav.Target()
	assert.Equal(t, Vec2{30, 40}, tgt)
}

func TestRelayedSightingHomeBias(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{50, 50}, true)
	nav.UpdatePosition(Vec2{0, 0})

	b.Step(nil, []Sighting{{Pos: Vec2{30, 40}, Timestamp: 1}}, 1)
	tgt, _ := nav.Target()
	// 传感单元向驻区偏置：目标 + 0.2*驻区角落
	assert.InDelta(t, 30+0.2*50, tgt.X, 1e-9)
	assert.InDelta(t, 40+0.2*50, tgt.Y, 1e-9)
}

func TestOwnDetectionOverridesRelayedSighting(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{0, 0}, false)
	nav.UpdatePosition(Vec2{0, 0})

	det := []Detection{{Direction: DirEast, Class: ClassTarget, Distance: 20}}
	sightings := []Sighting{{Pos: Vec2{-70, -70}, Timestamp: 1}}
	b.Step(det, sightings, 1)

	// 同 Tick 冲突时自身探测优先
	tgt, _ := nav.Target()
	assert.InDelta(t, 20.0, tgt.X, 1e-9)
	assert.InDelta(t, 0.0, tgt.Y, 1e-9)
}

func TestAttackToPatrolOnArrival(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{50, 50}, false)
	nav.UpdatePosition(Vec2{0, 0})
	b.Step(nil, []Sighting{{Pos: Vec2{30, 40}, Timestamp: 1}}, 1)
	require.Equal(t, StateAttack, b.State())

	// 进入 10.0 交战半径后回到巡逻，目标回到当前巡逻点
	nav.UpdatePosition(Vec2{25, 35})
	b.Step(nil, nil, 2)
	assert.Equal(t, StatePatrol, b.State())
	tgt, _ := nav.Target()
	assert.Equal(t, Vec2{60, 60}, tgt)
}

func TestAttackPersistsWhileFar(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{50, 50}, false)
	nav.UpdatePosition(Vec2{0, 0})
	b.Step(nil, []Sighting{{Pos: Vec2{80, 0}, Timestamp: 1}}, 1)
	require.Equal(t, StateAttack, b.State())

	nav.UpdatePosition(Vec2{40, 0})
	b.Step(nil, nil, 2)
	assert.Equal(t, StateAttack, b.State())
}

func TestDuplicateSightingIsIdempotent(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{0, 0}, false)
	nav.UpdatePosition(Vec2{0, 0})

	s := Sighting{Pos: Vec2{30, 0}, Timestamp: 1}
	b.Step(nil, []Sighting{s}, 1)
	state, tgt1 := b.State(), mustTarget(t, nav)

	// 同一目击重复送达：状态与目标保持不变
	b.Step(nil, []Sighting{s, s}, 1.1)
	assert.Equal(t, state, b.State())
	assert.Equal(t, tgt1, mustTarget(t, nav))
}

func TestUnknownDirectionSkipped(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{0, 0}, false)
	nav.UpdatePosition(Vec2{0, 0})

	det := []Detection{{Direction: "upward", Class: ClassTarget, Distance: 5}}
	rb := b.Step(det, nil, 1)
	assert.Nil(t, rb)
	assert.Equal(t, StatePatrol, b.State())
}

func TestObstacleDetectionDoesNotTrigger(t *testing.T) {
	b, nav := newPatrolBehavior(Vec2{0, 0}, false)
	nav.UpdatePosition(Vec2{0, 0})

	det := []Detection{{Direction: DirNorth, Class: ClassObstacle, Distance: 5}}
	rb := b.Step(det, nil, 1)
	assert.Nil(t, rb)
	assert.Equal(t, StatePatrol, b.State())
}

func mustTarget(t *testing.T, nav *Navigator) Vec2 {
	t.Helper()
	tgt, ok := nav.Target()
	require.True(t, ok)
	return tgt
}
