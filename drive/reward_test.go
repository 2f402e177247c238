package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRewardConfig() RewardConfig {
	return DefaultConfig().Reward
}

func newTestRewardModel() *RewardModel {
	return NewRewardModel(testRewardConfig(), testRoad(), 1000)
}

func TestTerminalCauses(t *testing.T) {
	m := newTestRewardModel()

	assert.Equal(t, CauseNone, m.Cause(Outcome{Steps: 10}))
	assert.Equal(t, CauseCollision, m.Cause(Outcome{Collision: true}))
	assert.Equal(t, CauseStepLimit, m.Cause(Outcome{Steps: 1000}))
	assert.Equal(t, CauseCollision, m.Cause(Outcome{Collision: true, Steps: 1000}),
		"collision wins when both hold")

	assert.Equal(t, "collision", CauseCollision.String())
	assert.Equal(t, "step_limit", CauseStepLimit.String())
	assert.Equal(t, "none", CauseNone.String())
}

func TestRewardTerminalPenalties(t *testing.T) {
	m := newTestRewardModel()
	cfg := testRewardConfig()

	collision := m.Reward(nil, ActionForward, Outcome{Collision: true, Steps: 5})
	assert.Equal(t, cfg.CollisionPenalty, collision)

	m.Reset()
	timeout := m.Reward(nil, ActionForward, Outcome{Steps: 1000})
	assert.Equal(t, cfg.TimeoutPenalty, timeout)

	assert.NotEqual(t, collision, timeout,
		"truncation and collision carry distinct penalties")
}

func TestRewardShaping(t *testing.T) {
	cfg := testRewardConfig()
	// Centered in a lane, moving, nothing ahead.
	base := Outcome{
		Pose:  Pose{X: 150, Speed: 2, MaxSpeed: 4},
		Steps: 1,
	}

	t.Run("tick cost plus full centering bonus at a lane center", func(t *testing.T) {
		m := newTestRewardModel()
		r := m.Reward(nil, ActionForward, base)
		assert.InDelta(t, cfg.TickCost+cfg.CenteringBonus, r, 1e-12)
	})

	t.Run("centering bonus decays linearly and dies one lane width out", func(t *testing.T) {
		m := newTestRewardModel()
		half := base
		half.Pose.X = 100 // 50 from the nearest center, lane width 100
		r := m.Reward(nil, ActionForward, half)
		assert.InDelta(t, cfg.TickCost+cfg.CenteringBonus*0.5, r, 1e-12)
	})

	t.Run("slow speed penalized", func(t *testing.T) {
		m := newTestRewardModel()
		slow := base
		slow.Pose.Speed = 0.1
		r := m.Reward(nil, ActionForward, slow)
		assert.InDelta(t, cfg.TickCost+cfg.SlowPenalty+cfg.CenteringBonus, r, 1e-12)
	})

	t.Run("forward obstacle penalized", func(t *testing.T) {
		m := newTestRewardModel()
		blocked := base
		blocked.Readings = []*Reading{nil, nil, {Offset: 0.2}, nil, nil}
		r := m.Reward(nil, ActionForward, blocked)
		assert.InDelta(t, cfg.TickCost+cfg.ProximityPenalty+cfg.CenteringBonus, r, 1e-12)
	})

	t.Run("lane change rebates part of the proximity penalty", func(t *testing.T) {
		m := newTestRewardModel()
		blocked := base
		blocked.Readings = []*Reading{nil, nil, {Offset: 0.2}, nil, nil}
		straight := m.Reward(nil, ActionForward, blocked)
		m.Reset()
		changing := m.Reward(nil, ActionForwardLeft, blocked)
		assert.Greater(t, changing, straight)
		assert.InDelta(t, straight-cfg.ProximityPenalty*cfg.LaneChangeRebate, changing, 1e-12)
	})

	t.Run("progress bonus paid once", func(t *testing.T) {
		m := newTestRewardModel()
		far := base
		far.Distance = cfg.ProgressThreshold + 1

		first := m.Reward(nil, ActionForward, far)
		second := m.Reward(nil, ActionForward, far)
		assert.InDelta(t, cfg.ProgressBonus, first-second, 1e-12)

		m.Reset()
		again := m.Reward(nil, ActionForward, far)
		require.InDelta(t, first, again, 1e-12, "reset re-arms the bonus")
	})
}

func TestForwardProximity(t *testing.T) {
	assert.Equal(t, 0.0, forwardProximity(nil))
	assert.Equal(t, 0.0, forwardProximity([]*Reading{nil, nil, nil}))
	assert.InDelta(t, 0.7, forwardProximity([]*Reading{nil, {Offset: 0.3}, nil}), 1e-12)
}
