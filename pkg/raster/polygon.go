package raster

import "math"

// Area returns the unsigned shoelace area of poly.
func Area(poly Polygon) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	var sum float64
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += poly[j].X*poly[i].Y - poly[i].X*poly[j].Y
	}
	return math.Abs(sum) / 2
}

// SelfIntersects reports whether two non-adjacent edges of poly cross.
// Touching at shared vertices of adjacent edges does not count.
func SelfIntersects(poly Polygon) bool {
	n := len(poly)
	if n < 4 {
		return false
	}
	for i := range n {
		a0, a1 := poly[i], poly[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// skip edges sharing a vertex with edge i
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b0, b1 := poly[j], poly[(j+1)%n]
			if segmentsCross(a0, a1, b0, b1) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper or collinear-overlap intersection of
// segments p0p1 and q0q1.
func segmentsCross(p0, p1, q0, q1 Point2D) bool {
	d1 := orient(q0, q1, p0)
	d2 := orient(q0, q1, p1)
	d3 := orient(p0, p1, q0)
	d4 := orient(p0, p1, q1)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(q0, q1, p0):
		return true
	case d2 == 0 && onSegment(q0, q1, p1):
		return true
	case d3 == 0 && onSegment(p0, p1, q0):
		return true
	case d4 == 0 && onSegment(p0, p1, q1):
		return true
	}
	return false
}

func orient(a, b, c Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// onSegment assumes c is collinear with ab.
func onSegment(a, b, c Point2D) bool {
	return min(a.X, b.X) <= c.X && c.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= c.Y && c.Y <= max(a.Y, b.Y)
}
