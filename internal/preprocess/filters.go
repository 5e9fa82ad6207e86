package preprocess

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

func toRGBA(src image.Image) *image.RGBA {
	if r, ok := src.(*image.RGBA); ok {
		return r
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// upscale resizes the image so its narrower dimension reaches minWidth,
// preserving aspect ratio. Tesseract accuracy drops sharply on small scans,
// so this runs before any enhancement.
func upscale(src *image.RGBA, minWidth int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	narrow := w
	if h < narrow {
		narrow = h
	}
	if narrow >= minWidth || narrow == 0 {
		return src
	}
	scale := float64(minWidth) / float64(narrow)
	dw := int(float64(w)*scale + 0.5)
	dh := int(float64(h)*scale + 0.5)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// sharpen blends the source with a 3x3 box blur: factor 1.0 returns the
// source, values above 1.0 push detail away from the blurred version.
func sharpen(src *image.RGBA, factor float64) *image.RGBA {
	if factor == 1.0 {
		return src
	}
	blurred := boxBlur(src)
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			bi := blurred.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				sv := float64(src.Pix[si+c])
				bv := float64(blurred.Pix[bi+c])
				dst.Pix[di+c] = clampByte(bv + factor*(sv-bv))
			}
			dst.Pix[di+3] = src.Pix[si+3]
		}
	}
	return dst
}

// adjustContrast scales channel values around mid-gray.
func adjustContrast(src *image.RGBA, factor float64) *image.RGBA {
	if factor == 1.0 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				v := float64(src.Pix[si+c])
				dst.Pix[di+c] = clampByte(128 + factor*(v-128))
			}
			dst.Pix[di+3] = src.Pix[si+3]
		}
	}
	return dst
}

func grayscale(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetGray(x, y, color.GrayModel.Convert(src.At(x, y)).(color.Gray))
		}
	}
	return dst
}

// denoise applies a 3x3 median filter. Median suppresses the salt-and-pepper
// speckle typical of document scans without smearing glyph edges the way a
// plain blur would.
func denoise(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	var window [9]uint8
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx, yy := x+dx, y+dy
					if xx < b.Min.X || xx >= b.Max.X || yy < b.Min.Y || yy >= b.Max.Y {
						continue
					}
					window[n] = src.GrayAt(xx, yy).Y
					n++
				}
			}
			dst.SetGray(x, y, color.Gray{Y: median(window[:n])})
		}
	}
	return dst
}

func boxBlur(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sum [3]int
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					xx, yy := x+dx, y+dy
					if xx < b.Min.X || xx >= b.Max.X || yy < b.Min.Y || yy >= b.Max.Y {
						continue
					}
					i := src.PixOffset(xx, yy)
					for c := 0; c < 3; c++ {
						sum[c] += int(src.Pix[i+c])
					}
					n++
				}
			}
			di := dst.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				dst.Pix[di+c] = uint8(sum[c] / n)
			}
			dst.Pix[di+3] = src.Pix[src.PixOffset(x, y)+3]
		}
	}
	return dst
}

func median(vals []uint8) uint8 {
	// insertion sort; the window never exceeds 9 entries
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j-1] > vals[j]; j-- {
			vals[j-1], vals[j] = vals[j], vals[j-1]
		}
	}
	return vals[len(vals)/2]
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
