package dataset

import "go.viam.com/depthtruth/utils"

// TOFDataset is a decoded depth frame: one point per pixel in raster order.
type TOFDataset struct {
	Origin          string          `json:"origin"`
	Timestamp       int64           `json:"tofTimestamp"`
	MinDistance     float32         `json:"minDistance"`
	MaxDistance     float32         `json:"maxDistance"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	Points          []Point         `json:"points"`
	NumPoints       int             `json:"numPoints"`
	DisplayRotation DisplayRotation `json:"displayRotation"`
}

// WithDisplayRotation returns a copy of the record bound to the given display rotation. The
// receiver is left unchanged; the point slice is shared and must be treated as read only.
func (ds *TOFDataset) WithDisplayRotation(rotation DisplayRotation) (*TOFDataset, error) {
	if err := rotation.Validate(); err != nil {
		return nil, err
	}
	out := *ds
	out.DisplayRotation = rotation
	return &out, nil
}

// At returns the point at pixel (x, y).
func (ds *TOFDataset) At(x, y int) Point {
	return ds.Points[y*ds.Width+x]
}

// Validate checks the invariants of a decoded record.
func (ds *TOFDataset) Validate() error {
	if ds.Origin != OriginTopLeft {
		return utils.NewDecodeError("depth frame origin %q, expected %q", ds.Origin, OriginTopLeft)
	}
	if ds.Width <= 0 || ds.Height <= 0 {
		return utils.NewDecodeError("invalid depth frame size %dx%d", ds.Width, ds.Height)
	}
	if ds.NumPoints != ds.Width*ds.Height || len(ds.Points) != ds.NumPoints {
		return utils.NewDecodeError("depth frame %dx%d has %d points and numPoints %d",
			ds.Width, ds.Height, len(ds.Points), ds.NumPoints)
	}
	return ds.DisplayRotation.Validate()
}
