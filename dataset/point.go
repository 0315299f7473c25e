package dataset

// Point is a single ground truth sample: a pixel position with the origin at the top left, the
// world position it was observed at, a confidence in [0, 1] and a distance in meters.
type Point struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	TX         float32 `json:"tx"`
	TY         float32 `json:"ty"`
	TZ         float32 `json:"tz"`
	Confidence float32 `json:"confidence"`
	Distance   float32 `json:"distance"`
}

// NewDepthPoint returns a point measured by a depth sensor. Depth samples have no world
// position, so the world coordinates are zero; they are still written so readers can treat
// projected and measured points alike.
func NewDepthPoint(x, y int, confidence, distance float32) Point {
	return Point{X: x, Y: y, Confidence: confidence, Distance: distance}
}

// distanceRange returns the smallest and largest distance among points.
func distanceRange(points []Point) (min, max float32, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	min, max = points[0].Distance, points[0].Distance
	for _, p := range points[1:] {
		if p.Distance < min {
			min = p.Distance
		}
		if p.Distance > max {
			max = p.Distance
		}
	}
	return min, max, true
}

func float32Ptr(v float32) *float32 {
	return &v
}
