package drive

// Point is an immutable plane coordinate.
type Point struct {
	X float64
	Y float64
}

// Segment is an ordered pair of points. It doubles as a sensor ray and as a
// static border: rays run from A (the agent) to B (the tip).
type Segment struct {
	A Point
	B Point
}

// Polygon is an ordered sequence of at least three points, implicitly closed
// (the last point connects back to the first). It represents an obstacle
// footprint.
type Polygon []Point

// Reading is an intersection hit on a ray. Offset is the fractional distance
// along the ray to the hit, 0 at the ray origin and 1 at the tip. Readings
// are derived data, recomputed every tick and never mutated in place.
type Reading struct {
	Point  Point
	Offset float64
}

// Lerp linearly interpolates between a and b. t=0 yields a, t=1 yields b.
// Used both for geometry and for numeric blending (e.g. network mutation).
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Intersect computes the intersection of segments AB and CD.
// Both segments are treated parametrically; the standard cross-product
// formulation solves for t (position along AB) and u (position along CD).
// A hit is reported only when both parameters lie in [0,1], i.e. the
// segments themselves overlap, not just their infinite extensions.
// Parallel segments (zero denominator, checked exactly) never intersect.
// The returned Reading's Offset is t.
func Intersect(a, b, c, d Point) (Reading, bool) {
	tTop := (d.X-c.X)*(a.Y-c.Y) - (d.Y-c.Y)*(a.X-c.X)
	uTop := (c.Y-a.Y)*(a.X-b.X) - (c.X-a.X)*(a.Y-b.Y)
	bottom := (d.Y-c.Y)*(b.X-a.X) - (d.X-c.X)*(b.Y-a.Y)

	if bottom == 0 {
		return Reading{}, false
	}

	t := tTop / bottom
	u := uTop / bottom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return Reading{}, false
	}

	return Reading{
		Point: Point{
			X: Lerp(a.X, b.X, t),
			Y: Lerp(a.Y, b.Y, t),
		},
		Offset: t,
	}, true
}

// Edge returns the i-th edge of the polygon, wrapping from the last point
// back to the first.
func (p Polygon) Edge(i int) Segment {
	return Segment{A: p[i], B: p[(i+1)%len(p)]}
}

// PolygonsOverlap reports whether any edge of p intersects any edge of q.
// The test is the plain pairwise O(|p|*|q|) sweep over edge pairs; the
// polygons involved are small enough that correctness beats speed here.
// Note this detects boundary crossings, not full containment of one polygon
// inside the other.
func PolygonsOverlap(p, q Polygon) bool {
	for i := range p {
		for j := range q {
			pe := p.Edge(i)
			qe := q.Edge(j)
			if _, ok := Intersect(pe.A, pe.B, qe.A, qe.B); ok {
				return true
			}
		}
	}
	return false
}
