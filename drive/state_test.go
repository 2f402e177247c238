package drive

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoad() Road {
	return Road{Left: 0, Right: 300, LaneCount: 3, Length: 1000}
}

func TestEncodeState(t *testing.T) {
	road := testRoad()

	t.Run("layout and normalization", func(t *testing.T) {
		readings := []*Reading{
			nil,
			{Offset: 0.25},
			{Offset: 1},
			nil,
			{Offset: 0.9},
		}
		pose := Pose{X: 150, Y: 500, Heading: math.Pi / 2, Speed: 2, MaxSpeed: 4}

		state := EncodeState(readings, pose, road, 9)
		require.Len(t, state, 9)

		assert.Equal(t, 0.0, state[0], "no hit maps to 0")
		assert.InDelta(t, 0.75, state[1], 1e-12, "near hit maps toward 1")
		assert.InDelta(t, 0.0, state[2], 1e-12, "hit at ray tip maps to 0")
		assert.Equal(t, 0.0, state[3])
		assert.InDelta(t, 0.1, state[4], 1e-12)
		assert.InDelta(t, 0.5, state[5], 1e-12, "speed / maxSpeed")
		assert.InDelta(t, 0.5, state[6], 1e-12, "heading / pi")
		assert.InDelta(t, 0.5, state[7], 1e-12, "lateral fraction")
		assert.InDelta(t, 0.5, state[8], 1e-12, "longitudinal fraction")
	})

	t.Run("clamping bands", func(t *testing.T) {
		pose := Pose{X: -600, Y: 5000, Heading: 10, Speed: 99, MaxSpeed: 4}
		state := EncodeState(nil, pose, road, 4)

		assert.Equal(t, 1.0, state[0], "speed clamps to [0,1]")
		assert.Equal(t, 1.0, state[1], "heading clamps to [-1,1]")
		assert.Equal(t, -0.5, state[2], "lateral clamps to [-0.5,1.5]")
		assert.Equal(t, 2.0, state[3], "longitudinal clamps to [-2,2]")
	})

	t.Run("NaN becomes zero", func(t *testing.T) {
		pose := Pose{X: math.NaN(), Y: math.NaN(), Heading: math.NaN(), Speed: math.NaN(), MaxSpeed: 4}
		state := EncodeState([]*Reading{{Offset: math.NaN()}}, pose, road, 5)
		for i, v := range state {
			assert.False(t, math.IsNaN(v), "index %d", i)
		}
	})

	t.Run("force-fit to state size", func(t *testing.T) {
		pose := Pose{MaxSpeed: 4}
		short := EncodeState(nil, pose, road, 9)
		assert.Len(t, short, 9, "zero-padded")

		long := EncodeState(make([]*Reading, 20), pose, road, 9)
		assert.Len(t, long, 9, "truncated")
	})
}

func TestValidateStateIdempotent(t *testing.T) {
	raw := []float64{math.NaN(), 7, -9, 0.25, math.Inf(1)}
	once := ValidateState(raw, 9)
	twice := ValidateState(once, 9)
	assert.Equal(t, once, twice)

	require.Len(t, once, 9)
	assert.Equal(t, 0.0, once[0])
	assert.Equal(t, 2.0, once[1])
	assert.Equal(t, -2.0, once[2])
	assert.Equal(t, 0.25, once[3])
	assert.Equal(t, 0.0, once[4])
}

func TestDecodeAction(t *testing.T) {
	t.Run("composite actions", func(t *testing.T) {
		assert.Equal(t, ControlCommand{Forward: true}, DecodeAction(ActionForward, 5))
		assert.Equal(t, ControlCommand{Forward: true, Left: true}, DecodeAction(ActionForwardLeft, 5))
		assert.Equal(t, ControlCommand{Forward: true, Right: true}, DecodeAction(ActionForwardRight, 5))
		assert.Equal(t, ControlCommand{Reverse: true}, DecodeAction(ActionReverse, 5))
		assert.Equal(t, ControlCommand{}, DecodeAction(ActionNoop, 5))
	})

	t.Run("out of range clamps", func(t *testing.T) {
		assert.Equal(t, ControlCommand{Forward: true}, DecodeAction(-3, 5))
		assert.Equal(t, ControlCommand{}, DecodeAction(99, 5))
	})

	t.Run("indices beyond the command set default to no-op", func(t *testing.T) {
		assert.Equal(t, ControlCommand{}, DecodeAction(7, 8))
	})

	t.Run("degenerate action size", func(t *testing.T) {
		assert.Equal(t, ControlCommand{}, DecodeAction(0, 0))
	})
}

func TestRoadGeometry(t *testing.T) {
	road := testRoad()

	assert.InDelta(t, 100, road.LaneWidth(), 1e-12)
	assert.InDelta(t, 50, road.LaneCenter(0), 1e-12)
	assert.InDelta(t, 150, road.LaneCenter(1), 1e-12)
	assert.InDelta(t, 250, road.LaneCenter(2), 1e-12)

	assert.InDelta(t, 0, road.NearestLaneCenterDistance(150), 1e-12)
	assert.InDelta(t, 30, road.NearestLaneCenterDistance(120), 1e-12)
	assert.InDelta(t, 50, road.NearestLaneCenterDistance(100), 1e-12)
}
