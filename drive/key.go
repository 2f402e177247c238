package drive

import (
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeyCodec discretizes a continuous state vector into a canonical table key.
// Any two raw states whose discretized forms match collide to the same
// Q-table row. The codec is swappable so a finer discretization (or a
// learned approximator behind the same interface) can be substituted
// without touching the update rule.
type KeyCodec interface {
	Key(state []float64) string
}

// RoundedKeyCodec rounds each coordinate to a fixed resolution and joins the
// rounded values into a single string key. Sensor-proximity coordinates
// (the first SensorDims entries) are rounded to one decimal; kinematic
// coordinates to two. Resolution trades table size against generalization
// and can be retuned here without touching the learning algorithm.
type RoundedKeyCodec struct {
	SensorDims int
}

// Key builds the canonical rounded key for a state vector.
func (c RoundedKeyCodec) Key(state []float64) string {
	var sb strings.Builder
	for i, v := range state {
		if i > 0 {
			sb.WriteByte(',')
		}
		decimals := 2
		if i < c.SensorDims {
			decimals = 1
		}
		sb.WriteString(strconv.FormatFloat(roundTo(sanitize(v, 0), decimals), 'f', decimals, 64))
	}
	return sb.String()
}

// HashedKeyCodec produces a compact 64-bit xxhash of the rounded key,
// trading debuggability for smaller keys in long-running tables.
type HashedKeyCodec struct {
	Rounded RoundedKeyCodec
}

// Key hashes the rounded canonical form.
func (c HashedKeyCodec) Key(state []float64) string {
	return strconv.FormatUint(xxhash.Sum64String(c.Rounded.Key(state)), 16)
}

// NewKeyCodec builds the codec named by the config ("rounded" or "hashed";
// anything else falls back to rounded).
func NewKeyCodec(name string, sensorDims int) KeyCodec {
	rounded := RoundedKeyCodec{SensorDims: sensorDims}
	if name == "hashed" {
		return HashedKeyCodec{Rounded: rounded}
	}
	return rounded
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // Normalize -0 so it keys identically to +0
	}
	return r
}
