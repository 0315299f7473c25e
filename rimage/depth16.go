// Package rimage decodes DEPTH16 depth sensor frames and renders depth data as images.
package rimage

import (
	"encoding/binary"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/utils"
)

// A DEPTH16 sample packs a range in millimeters in the low 13 bits and a confidence level in
// the high 3 bits.
const (
	MaxDepth16Range        = 0x1FFF
	MaxDepth16Confidence   = 7
	depth16ConfidenceShift = 13
	depth16ConfidenceMask  = 0x7
	depth16BytesPerSample  = 2
)

// Depth16 is a single DEPTH16 sample.
type Depth16 uint16

// EncodeDepth16 packs a range in millimeters and a confidence level into a sample.
func EncodeDepth16(rangeMM uint16, level uint8) (Depth16, error) {
	if rangeMM > MaxDepth16Range {
		return 0, utils.NewDecodeError("range %dmm exceeds the %dmm DEPTH16 limit", rangeMM, MaxDepth16Range)
	}
	if level > MaxDepth16Confidence {
		return 0, utils.NewDecodeError("confidence level %d exceeds %d", level, MaxDepth16Confidence)
	}
	return Depth16(uint16(level)<<depth16ConfidenceShift | rangeMM), nil
}

// Range returns the measured range in millimeters.
func (s Depth16) Range() uint16 {
	return uint16(s) & MaxDepth16Range
}

// Meters returns the measured range in meters.
func (s Depth16) Meters() float32 {
	return float32(s.Range()) / 1000
}

// ConfidenceLevel returns the raw 3 bit confidence level.
func (s Depth16) ConfidenceLevel() uint8 {
	return uint8((uint16(s) >> depth16ConfidenceShift) & depth16ConfidenceMask)
}

// Confidence maps the confidence level to [0, 1]. Level 0 means the sensor did not report a
// confidence and is treated as fully confident; levels 1 through 7 map to 0, 1/7, ..., 6/7.
func (s Depth16) Confidence() float32 {
	level := s.ConfidenceLevel()
	if level == 0 {
		return 1
	}
	return float32(level-1) / MaxDepth16Confidence
}

// DecodeDepth16 decodes a raster of samples into a depth frame record. The point at index i
// is pixel (i mod width, i div width).
func DecodeDepth16(samples []uint16, width, height int, timestamp int64) (*dataset.TOFDataset, error) {
	if width <= 0 || height <= 0 {
		return nil, utils.NewDecodeError("invalid depth frame size %dx%d", width, height)
	}
	if len(samples) != width*height {
		return nil, utils.NewDecodeError("depth frame %dx%d needs %d samples, got %d",
			width, height, width*height, len(samples))
	}

	points := make([]dataset.Point, len(samples))
	minMM, maxMM := uint16(MaxDepth16Range), uint16(0)
	for i, raw := range samples {
		s := Depth16(raw)
		rangeMM := s.Range()
		if rangeMM < minMM {
			minMM = rangeMM
		}
		if rangeMM > maxMM {
			maxMM = rangeMM
		}
		points[i] = dataset.NewDepthPoint(i%width, i/width, s.Confidence(), s.Meters())
	}

	return &dataset.TOFDataset{
		Origin:      dataset.OriginTopLeft,
		Timestamp:   timestamp,
		MinDistance: float32(minMM) / 1000,
		MaxDistance: float32(maxMM) / 1000,
		Width:       width,
		Height:      height,
		Points:      points,
		NumPoints:   len(points),
	}, nil
}

// ReadDepth16 unpacks a DEPTH16 image plane. rowStride is the number of bytes between the
// starts of consecutive rows; zero means rows are tightly packed.
func ReadDepth16(buf []byte, order binary.ByteOrder, width, height, rowStride int) ([]uint16, error) {
	if width <= 0 || height <= 0 {
		return nil, utils.NewDecodeError("invalid depth frame size %dx%d", width, height)
	}
	rowBytes := width * depth16BytesPerSample
	if rowStride == 0 {
		rowStride = rowBytes
	}
	if rowStride < rowBytes {
		return nil, utils.NewDecodeError("row stride %d is smaller than a %d byte row", rowStride, rowBytes)
	}
	if need := (height-1)*rowStride + rowBytes; len(buf) < need {
		return nil, utils.NewDecodeError("depth plane has %d bytes, needs %d", len(buf), need)
	}

	samples := make([]uint16, 0, width*height)
	for y := 0; y < height; y++ {
		row := buf[y*rowStride : y*rowStride+rowBytes]
		for x := 0; x < width; x++ {
			samples = append(samples, order.Uint16(row[x*depth16BytesPerSample:]))
		}
	}
	return samples, nil
}

// WriteDepth16 packs samples into a tightly packed plane.
func WriteDepth16(samples []uint16, order binary.ByteOrder) []byte {
	buf := make([]byte, len(samples)*depth16BytesPerSample)
	for i, s := range samples {
		order.PutUint16(buf[i*depth16BytesPerSample:], s)
	}
	return buf
}
