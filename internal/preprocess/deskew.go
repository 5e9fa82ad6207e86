package preprocess

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// maxDeskewDegrees bounds the correction. Scans are rarely off by more than
// a few degrees; a larger estimate means the foreground-axis fit latched onto
// something other than text lines, and rotating would make things worse.
const maxDeskewDegrees = 5.0

const inkThreshold = 128 // pixels darker than this count as foreground

// deskew estimates the dominant text angle from the second moments of the
// foreground (ink) pixels and rotates to correct it. Returns the input
// unchanged when the estimate exceeds maxDeskewDegrees or there is too
// little ink to trust.
func deskew(src *image.Gray) (*image.Gray, float64) {
	angle := estimateSkew(src)
	if angle == 0 || math.Abs(angle) > maxDeskewDegrees {
		return src, 0
	}
	return rotate(src, -angle), angle
}

// estimateSkew fits the principal axis of the ink distribution. For a page
// of horizontal text lines the axis tracks the baselines, so its angle from
// horizontal is the skew. Returns degrees; 0 when indeterminate.
func estimateSkew(src *image.Gray) float64 {
	b := src.Bounds()
	var n, sumX, sumY float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.GrayAt(x, y).Y < inkThreshold {
				n++
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}
	if n < 64 {
		return 0 // not enough ink for a stable fit
	}
	cx, cy := sumX/n, sumY/n

	var mu20, mu02, mu11 float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.GrayAt(x, y).Y < inkThreshold {
				dx, dy := float64(x)-cx, float64(y)-cy
				mu20 += dx * dx
				mu02 += dy * dy
				mu11 += dx * dy
			}
		}
	}
	if mu20 == mu02 && mu11 == 0 {
		return 0
	}
	theta := 0.5 * math.Atan2(2*mu11, mu20-mu02)
	deg := theta * 180 / math.Pi
	// the principal axis is direction-ambiguous; fold near-vertical results
	if deg > 45 {
		deg -= 90
	} else if deg < -45 {
		deg += 90
	}
	return deg
}

// rotate turns the image by deg degrees around its center onto a white
// canvas of the same size.
func rotate(src *image.Gray, deg float64) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for i := range dst.Pix {
		dst.Pix[i] = 255
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(b.Min.X+b.Max.X) / 2
	cy := float64(b.Min.Y+b.Max.Y) / 2
	// dst = R*(p - c) + c
	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	xdraw.BiLinear.Transform(dst, m, src, b, xdraw.Src, nil)
	return dst
}
