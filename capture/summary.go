package capture

import (
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/pointcloud"
)

// DistanceSummary describes the distances of a set of points in meters.
type DistanceSummary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
	P95    float64
}

// Report is what processing one frame produced.
type Report struct {
	Index  int
	Stats  pointcloud.Stats
	Points DistanceSummary
	TOF    DistanceSummary
}

// Summarize reports on the records of one frame.
func Summarize(records *Records) Report {
	report := Report{Index: records.Index, Stats: records.Stats}
	if records.PointCloud != nil {
		report.Points = SummarizeDistances(records.PointCloud.Points)
	}
	if records.TOF != nil {
		report.TOF = SummarizeDistances(records.TOF.Points)
	}
	return report
}

// SummarizeDistances computes distance statistics of points. An empty set yields a zero
// summary.
func SummarizeDistances(points []dataset.Point) DistanceSummary {
	if len(points) == 0 {
		return DistanceSummary{}
	}
	data := lo.Map(points, func(p dataset.Point, _ int) float64 { return float64(p.Distance) })

	summary := DistanceSummary{
		Count: len(data),
		Min:   floats.Min(data),
		Max:   floats.Max(data),
	}
	summary.Mean, summary.StdDev = stat.PopMeanStdDev(data, nil)
	// errors only arise on empty input
	summary.Median, _ = stats.Median(data)
	summary.P95, _ = stats.Percentile(data, 95)
	return summary
}
