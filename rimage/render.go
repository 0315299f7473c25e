package rimage

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"go.viam.com/depthtruth/dataset"
	"go.viam.com/depthtruth/utils"
)

// RenderOptions control how points are drawn.
type RenderOptions struct {
	Method ConversionMethod
	// Radius is the half size of the square drawn for each point; 0 draws a single pixel.
	Radius     int
	Background color.NRGBA
	// MaxDistance is the distance that maps to the top of the color range. Zero uses the
	// largest distance among the points.
	MaxDistance float32
}

// RenderPoints draws points into a width by height image. Later points overwrite earlier ones.
func RenderPoints(width, height int, points []dataset.Point, opts RenderOptions) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, utils.NewConfigurationError("invalid image size %dx%d", width, height)
	}
	if opts.Radius < 0 {
		return nil, utils.NewConfigurationError("invalid point radius %d", opts.Radius)
	}
	if opts.Method == 0 {
		opts.Method = Plasma
	}
	max := opts.MaxDistance
	if max == 0 {
		for _, p := range points {
			if p.Distance > max {
				max = p.Distance
			}
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{opts.Background}, image.Point{}, draw.Src)
	for _, p := range points {
		c := DistanceColor(p.Distance, max, opts.Method)
		for y := p.Y - opts.Radius; y <= p.Y+opts.Radius; y++ {
			for x := p.X - opts.Radius; x <= p.X+opts.Radius; x++ {
				if x < 0 || x >= width || y < 0 || y >= height {
					continue
				}
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img, nil
}

// RenderTOF draws a depth frame at its native size, scaled to the frame's own maximum distance
// unless opts says otherwise.
func RenderTOF(ds *dataset.TOFDataset, opts RenderOptions) (*image.NRGBA, error) {
	if opts.MaxDistance == 0 {
		opts.MaxDistance = ds.MaxDistance
	}
	return RenderPoints(ds.Width, ds.Height, ds.Points, opts)
}

// TOFToGray16 returns the frame as a 16 bit image of millimeters.
func TOFToGray16(ds *dataset.TOFDataset) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, ds.Width, ds.Height))
	for _, p := range ds.Points {
		mm := p.Distance*1000 + 0.5
		img.SetGray16(p.X, p.Y, color.Gray16{Y: uint16(mm)})
	}
	return img
}

// RotateForDisplay rotates img counter-clockwise by the display rotation so it appears the way
// it did on screen.
func RotateForDisplay(img image.Image, rotation dataset.DisplayRotation) (*image.NRGBA, error) {
	switch rotation {
	case dataset.Rotation0:
		return imaging.Clone(img), nil
	case dataset.Rotation90:
		return imaging.Rotate90(img), nil
	case dataset.Rotation180:
		return imaging.Rotate180(img), nil
	case dataset.Rotation270:
		return imaging.Rotate270(img), nil
	default:
		return nil, rotation.Validate()
	}
}

// RotateGray16ForDisplay is RotateForDisplay for 16 bit images, keeping the full sample depth.
func RotateGray16ForDisplay(img *image.Gray16, rotation dataset.DisplayRotation) (*image.Gray16, error) {
	if err := rotation.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	outW, outH := w, h
	if rotation == dataset.Rotation90 || rotation == dataset.Rotation270 {
		outW, outH = h, w
	}
	out := image.NewGray16(image.Rect(0, 0, outW, outH))
	utils.ParallelForEachRow(h, func(y int) {
		for x := 0; x < w; x++ {
			ox, oy := x, y
			switch rotation {
			case dataset.Rotation90:
				ox, oy = y, w-1-x
			case dataset.Rotation180:
				ox, oy = w-1-x, h-1-y
			case dataset.Rotation270:
				ox, oy = h-1-y, x
			case dataset.Rotation0:
			}
			out.SetGray16(ox, oy, img.Gray16At(b.Min.X+x, b.Min.Y+y))
		}
	})
	return out, nil
}

// WriteImageToFile writes img, choosing the encoding from the file extension.
func WriteImageToFile(path string, img image.Image) error {
	return utils.NewIOError("save image", path, imaging.Save(img, path))
}

// ReadImageFromFile decodes the image at path.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, utils.NewIOError("open image", path, err)
	}
	return img, nil
}
