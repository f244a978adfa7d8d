// Package canvas draws a circle on a web page canvas with a real browser.
package canvas

import "math"

// DefaultPoints is used when fewer than three points are requested.
const DefaultPoints = 100

// Point is a position in CSS pixels.
type Point struct {
	X, Y float64
}

// Rect is an element's bounding box as reported by getBoundingClientRect.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CirclePoints samples a closed circle centred in rect, in coordinates
// local to rect. The radius is a third of the shorter side and the result
// has n+1 points, the last equal to the first.
func CirclePoints(rect Rect, n int) []Point {
	if n < 3 {
		n = DefaultPoints
	}
	cx, cy := rect.Width/2, rect.Height/2
	r := math.Min(rect.Width, rect.Height) / 3
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}

// Deltas returns the relative moves between consecutive points.
func Deltas(pts []Point) []Point {
	if len(pts) < 2 {
		return nil
	}
	out := make([]Point, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		out = append(out, Point{X: pts[i].X - pts[i-1].X, Y: pts[i].Y - pts[i-1].Y})
	}
	return out
}
