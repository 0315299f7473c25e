package dataset

import (
	"encoding/json"

	"github.com/samber/lo"

	"go.viam.com/depthtruth/utils"
)

const (
	// OriginLeftTop is the pixel origin recorded on projected point clouds.
	OriginLeftTop = "left-top"
	// OriginTopLeft is the pixel origin recorded on depth frames.
	OriginTopLeft = "top-left"
)

// PointCloudDataset is the set of point cloud points that project inside the viewport for one
// frame. NumPoints is the size of the cloud before visibility filtering. MinDistance and
// MaxDistance are null when no point is visible.
type PointCloudDataset struct {
	Timestamp   int64    `json:"pointCloudTimestamp"`
	Points      []Point  `json:"points"`
	MinDistance *float32 `json:"minDistance"`
	MaxDistance *float32 `json:"maxDistance"`
	Origin      string   `json:"origin"`
	NumPoints   int      `json:"numPoints"`
}

// NewPointCloudDataset builds a point cloud record from the visible points, deriving the
// distance range from them.
func NewPointCloudDataset(timestamp int64, points []Point, numPoints int) (*PointCloudDataset, error) {
	if len(points) > numPoints {
		return nil, utils.NewDecodeError("%d visible points out of a cloud of %d", len(points), numPoints)
	}
	if points == nil {
		points = []Point{}
	}
	ds := &PointCloudDataset{
		Timestamp: timestamp,
		Points:    points,
		Origin:    OriginLeftTop,
		NumPoints: numPoints,
	}
	if min, max, ok := distanceRange(points); ok {
		ds.MinDistance = float32Ptr(min)
		ds.MaxDistance = float32Ptr(max)
	}
	return ds, nil
}

// DistanceRange returns the distance range of the visible points. ok is false when there are
// none.
func (ds *PointCloudDataset) DistanceRange() (min, max float32, ok bool) {
	if ds.MinDistance == nil || ds.MaxDistance == nil {
		return 0, 0, false
	}
	return *ds.MinDistance, *ds.MaxDistance, true
}

// Validate checks the invariants of a decoded record.
func (ds *PointCloudDataset) Validate() error {
	if ds.Origin != OriginLeftTop {
		return utils.NewDecodeError("point cloud origin %q, expected %q", ds.Origin, OriginLeftTop)
	}
	if len(ds.Points) > ds.NumPoints {
		return utils.NewDecodeError("%d visible points out of a cloud of %d", len(ds.Points), ds.NumPoints)
	}
	if (ds.MinDistance == nil) != (ds.MaxDistance == nil) {
		return utils.NewDecodeError("point cloud has only one of minDistance and maxDistance")
	}
	if len(ds.Points) > 0 && ds.MinDistance == nil {
		return utils.NewDecodeError("point cloud has %d points but no distance range", len(ds.Points))
	}
	return nil
}

// UnmarshalJSON decodes a point cloud record. Records written by older capture tools name the
// point list "visiblePoints" and pad it with nulls up to the cloud size; those entries are
// dropped.
func (ds *PointCloudDataset) UnmarshalJSON(data []byte) error {
	type plain PointCloudDataset
	var wire struct {
		plain
		VisiblePoints []*Point `json:"visiblePoints"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*ds = PointCloudDataset(wire.plain)
	if ds.Points == nil && wire.VisiblePoints != nil {
		ds.Points = lo.FilterMap(wire.VisiblePoints, func(p *Point, _ int) (Point, bool) {
			if p == nil {
				return Point{}, false
			}
			return *p, true
		})
	}
	if ds.Points == nil {
		ds.Points = []Point{}
	}
	return nil
}
