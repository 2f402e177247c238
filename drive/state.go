package drive

import (
	"math"
)

// Road describes the static road geometry the codec and reward model need:
// the lateral extent, how many lanes span it, and the longitudinal length
// used for position normalization.
type Road struct {
	Left      float64
	Right     float64
	LaneCount int
	Length    float64
}

// LaneWidth returns the width of a single lane.
func (r Road) LaneWidth() float64 {
	if r.LaneCount <= 0 {
		return r.Right - r.Left
	}
	return (r.Right - r.Left) / float64(r.LaneCount)
}

// LaneCenter returns the x coordinate of the center of lane i.
func (r Road) LaneCenter(i int) float64 {
	return r.Left + r.LaneWidth()*(float64(i)+0.5)
}

// NearestLaneCenterDistance returns the lateral distance from x to the
// closest lane center.
func (r Road) NearestLaneCenterDistance(x float64) float64 {
	if r.LaneCount <= 0 {
		return 0
	}
	best := math.Inf(1)
	for i := 0; i < r.LaneCount; i++ {
		d := math.Abs(x - r.LaneCenter(i))
		if d < best {
			best = d
		}
	}
	return best
}

// stateBound is the widest normalization band any state coordinate uses;
// ValidateState clamps every coordinate into it.
const stateBound = 2.0

// EncodeState maps raw simulation observables into the bounded, fixed-length
// state vector the Q-learning agent consumes. Layout is positional:
//
//	[0 .. rays-1]  ray proximity, 1 - offset (0 when the ray hit nothing)
//	[rays+0]       speed / maxSpeed, clamped to [0, 1]
//	[rays+1]       heading / pi, clamped to [-1, 1]
//	[rays+2]       lateral position (x - left) / (right - left), clamped to
//	               [-0.5, 1.5] to tolerate off-road excursions
//	[rays+3]       longitudinal position y / length, clamped to [-2, 2]
//
// NaN or missing coordinates become 0, and the result is force-fit to
// stateSize by zero-padding or truncation. Encoding never fails.
func EncodeState(readings []*Reading, pose Pose, road Road, stateSize int) []float64 {
	state := make([]float64, 0, len(readings)+4)

	// Near object -> value close to 1; far or no object -> toward 0.
	for _, r := range readings {
		if r == nil {
			state = append(state, 0)
			continue
		}
		state = append(state, clamp(sanitize(1-r.Offset, 0), 0, 1))
	}

	speed := 0.0
	if pose.MaxSpeed > 0 {
		speed = pose.Speed / pose.MaxSpeed
	}
	state = append(state, clamp(sanitize(speed, 0), 0, 1))
	state = append(state, clamp(sanitize(pose.Heading/math.Pi, 0), -1, 1))

	lateral := 0.0
	if road.Right > road.Left {
		lateral = (pose.X - road.Left) / (road.Right - road.Left)
	}
	state = append(state, clamp(sanitize(lateral, 0), -0.5, 1.5))

	longitudinal := 0.0
	if road.Length > 0 {
		longitudinal = pose.Y / road.Length
	}
	state = append(state, clamp(sanitize(longitudinal, 0), -stateBound, stateBound))

	return fitState(state, stateSize)
}

// ValidateState corrects a state vector of unknown provenance: every
// coordinate is sanitized (NaN/Inf -> 0) and clamped into the widest
// normalization band, and the vector is zero-padded or truncated to
// stateSize. Applying it twice yields the same vector as applying it once.
func ValidateState(state []float64, stateSize int) []float64 {
	out := make([]float64, len(state))
	for i, v := range state {
		out[i] = clamp(sanitize(v, 0), -stateBound, stateBound)
	}
	return fitState(out, stateSize)
}

// fitState force-fits a vector to the declared size by zero-padding or
// truncation. Shape violations are corrected, never raised.
func fitState(state []float64, stateSize int) []float64 {
	if stateSize <= 0 || len(state) == stateSize {
		return state
	}
	if len(state) > stateSize {
		return state[:stateSize]
	}
	padded := make([]float64, stateSize)
	copy(padded, state)
	return padded
}

// ControlCommand is the discrete steering output handed back to the
// kinematics layer for the next integration step.
type ControlCommand struct {
	Forward bool
	Reverse bool
	Left    bool
	Right   bool
}

// Discrete action indices. The action space includes composite actions and
// an explicit no-op.
const (
	ActionForward = iota
	ActionForwardLeft
	ActionForwardRight
	ActionReverse
	ActionNoop
)

var actionCommands = []ControlCommand{
	ActionForward:      {Forward: true},
	ActionForwardLeft:  {Forward: true, Left: true},
	ActionForwardRight: {Forward: true, Right: true},
	ActionReverse:      {Reverse: true},
	ActionNoop:         {},
}

// DecodeAction maps a discrete action index to its control command. Unknown
// or out-of-range indices clamp into [0, actionSize) and anything beyond the
// known command set defaults to the no-op.
func DecodeAction(index, actionSize int) ControlCommand {
	if actionSize <= 0 {
		return ControlCommand{}
	}
	if index < 0 {
		index = 0
	} else if index >= actionSize {
		index = actionSize - 1
	}
	if index >= len(actionCommands) {
		return ControlCommand{}
	}
	return actionCommands[index]
}
