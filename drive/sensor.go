package drive

import (
	"math"
)

// Pose is the agent's kinematic state as handed over by the physics layer
// each tick. Plain data, no callbacks.
type Pose struct {
	X        float64
	Y        float64
	Heading  float64
	Speed    float64
	MaxSpeed float64
}

// Position returns the pose's plane coordinate.
func (p Pose) Position() Point {
	return Point{X: p.X, Y: p.Y}
}

// Sensor casts a fan of rays from the agent's pose and reduces each ray to
// its nearest hit against the scene's borders and obstacle polygons.
// Rays and readings are recomputed every tick as fresh slices; nothing is
// reused in place across ticks.
type Sensor struct {
	RayCount  int
	RayLength float64
	RaySpread float64
}

// NewSensor creates a Sensor from the config.
func NewSensor(cfg SensorConfig) *Sensor {
	return &Sensor{
		RayCount:  cfg.RayCount,
		RayLength: cfg.RayLength,
		RaySpread: cfg.RaySpread,
	}
}

// CastRays generates RayCount rays evenly spread over RaySpread radians,
// centered on the agent's heading (angle 0 = straight ahead). A single ray
// is centered via t = 0.5, which also avoids the division by zero.
//
// The ray tip is position minus (sin(angle), cos(angle)) * RayLength: with
// screen coordinates (y grows downward) this makes angle 0 point "up".
func (s *Sensor) CastRays(pose Pose) []Segment {
	rays := make([]Segment, 0, s.RayCount)
	for i := 0; i < s.RayCount; i++ {
		t := 0.5
		if s.RayCount > 1 {
			t = float64(i) / float64(s.RayCount-1)
		}
		angle := Lerp(s.RaySpread/2, -s.RaySpread/2, t) + pose.Heading

		start := pose.Position()
		end := Point{
			X: start.X - math.Sin(angle)*s.RayLength,
			Y: start.Y - math.Cos(angle)*s.RayLength,
		}
		rays = append(rays, Segment{A: start, B: end})
	}
	return rays
}

// Sense intersects every ray against every border segment and every edge of
// every obstacle polygon and keeps, per ray, the hit with the minimum offset
// (the nearest one). A nil entry means the ray hit nothing. Exact offset
// ties keep the first minimum found.
func (s *Sensor) Sense(rays []Segment, borders []Segment, obstacles []Polygon) []*Reading {
	readings := make([]*Reading, len(rays))
	for i, ray := range rays {
		readings[i] = nearestHit(ray, borders, obstacles)
	}
	return readings
}

// Scan is the combined per-tick perception step: cast the fan, then reduce.
func (s *Sensor) Scan(pose Pose, borders []Segment, obstacles []Polygon) []*Reading {
	return s.Sense(s.CastRays(pose), borders, obstacles)
}

func nearestHit(ray Segment, borders []Segment, obstacles []Polygon) *Reading {
	var nearest *Reading
	consider := func(r Reading) {
		if nearest == nil || r.Offset < nearest.Offset {
			hit := r
			nearest = &hit
		}
	}

	for _, border := range borders {
		if r, ok := Intersect(ray.A, ray.B, border.A, border.B); ok {
			consider(r)
		}
	}
	for _, poly := range obstacles {
		for i := range poly {
			edge := poly.Edge(i)
			if r, ok := Intersect(ray.A, ray.B, edge.A, edge.B); ok {
				consider(r)
			}
		}
	}
	return nearest
}
