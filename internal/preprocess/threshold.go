package preprocess

import "image"

const (
	thresholdWindow = 15 // local window side for adaptive thresholding
	thresholdBias   = 10 // a pixel must be this much darker than its window mean
)

// adaptiveThreshold binarizes using a per-pixel local mean computed over a
// window x window neighborhood. Uneven scan illumination defeats a single
// global threshold; the integral image keeps the local variant O(1) per pixel.
func adaptiveThreshold(src *image.Gray, window, bias int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}

	// integral[y][x] = sum of all pixels above and left of (x, y), inclusive
	integral := make([]int64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	half := window / 2
	dst := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half+1, y+half+1
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			count := int64((x1 - x0) * (y1 - y0))
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] -
				integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := sum / count

			i := dst.PixOffset(b.Min.X+x, b.Min.Y+y)
			if int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y) < mean-int64(bias) {
				dst.Pix[i] = 0
			} else {
				dst.Pix[i] = 255
			}
		}
	}
	return dst
}
