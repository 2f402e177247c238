package drive

import (
	"math"
)

// TerminalCause distinguishes why an episode ended. Collision and step-limit
// truncation both terminate, but they are distinct causes for logging and
// metrics and carry different penalties.
type TerminalCause int

const (
	CauseNone TerminalCause = iota
	CauseCollision
	CauseStepLimit
)

// String returns the metric label for the cause.
func (c TerminalCause) String() string {
	switch c {
	case CauseCollision:
		return "collision"
	case CauseStepLimit:
		return "step_limit"
	default:
		return "none"
	}
}

// Outcome is the post-action simulation state the reward model scores:
// the new pose and readings, cumulative forward distance, collision flag
// and the step count inside the current episode.
type Outcome struct {
	Pose      Pose
	Readings  []*Reading
	Distance  float64
	Collision bool
	Steps     int
}

// RewardModel computes the scalar reward for one transition. The model keeps
// one piece of per-episode state (whether the sustained-progress bonus has
// been paid); Reset clears it between episodes.
type RewardModel struct {
	cfg      RewardConfig
	road     Road
	maxSteps int

	progressPaid bool
}

// NewRewardModel creates a reward model over the given road geometry.
func NewRewardModel(cfg RewardConfig, road Road, maxSteps int) *RewardModel {
	return &RewardModel{cfg: cfg, road: road, maxSteps: maxSteps}
}

// Reset clears per-episode reward state.
func (m *RewardModel) Reset() {
	m.progressPaid = false
}

// Cause classifies the outcome's terminal condition. Collision wins over
// step-limit truncation when both hold on the same tick.
func (m *RewardModel) Cause(out Outcome) TerminalCause {
	if out.Collision {
		return CauseCollision
	}
	if m.maxSteps > 0 && out.Steps >= m.maxSteps {
		return CauseStepLimit
	}
	return CauseNone
}

// Reward computes the shaped reward for the transition that produced out.
// It is a weighted sum of terms:
//
//   - large negative on collision; a distinct fixed penalty on step-limit
//     truncation
//   - a one-time large positive once cumulative forward distance passes the
//     progress threshold
//   - a small negative every tick, to encourage efficiency
//   - negative when speed is below the minimum threshold
//   - negative when a forward obstacle is within the proximity threshold,
//     partially rebated while the action is actively steering sideways
//   - a bounded positive lane-centering bonus that peaks on the nearest lane
//     center and decays linearly, reaching zero one full lane width away
//
// The lane-centering bonus is additive on top of the progress terms.
func (m *RewardModel) Reward(prev []float64, action int, out Outcome) float64 {
	switch m.Cause(out) {
	case CauseCollision:
		return m.cfg.CollisionPenalty
	case CauseStepLimit:
		return m.cfg.TimeoutPenalty
	}

	reward := m.cfg.TickCost

	if !m.progressPaid && out.Distance >= m.cfg.ProgressThreshold {
		m.progressPaid = true
		reward += m.cfg.ProgressBonus
	}

	if out.Pose.Speed < m.cfg.MinSpeed {
		reward += m.cfg.SlowPenalty
	}

	if proximity := forwardProximity(out.Readings); proximity >= m.cfg.ProximityThreshold {
		penalty := m.cfg.ProximityPenalty
		cmd := DecodeAction(action, len(actionCommands))
		if cmd.Left || cmd.Right {
			penalty *= 1 - clamp(m.cfg.LaneChangeRebate, 0, 1)
		}
		reward += penalty
	}

	laneWidth := m.road.LaneWidth()
	if laneWidth > 0 {
		dist := m.road.NearestLaneCenterDistance(out.Pose.X)
		reward += m.cfg.CenteringBonus * math.Max(0, 1-dist/laneWidth)
	}

	return sanitize(reward, 0)
}

// forwardProximity reduces the center ray's reading to the 1-offset
// proximity measure (0 when the forward ray hit nothing).
func forwardProximity(readings []*Reading) float64 {
	if len(readings) == 0 {
		return 0
	}
	center := readings[len(readings)/2]
	if center == nil {
		return 0
	}
	return clamp(sanitize(1-center.Offset, 0), 0, 1)
}
