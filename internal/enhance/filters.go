package enhance

import (
	"image"
	"image/draw"
)

// sharpenKernel is the fixed unsharp kernel, divisor 16.
var sharpenKernel = [9]int{
	-2, -2, -2,
	-2, 32, -2,
	-2, -2, -2,
}

// toRGBA normalizes any image to a zero-origin *image.RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// grayscale converts to a single-channel image using the ITU-R 601-2
// luma transform.
func grayscale(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
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

// mapChannels applies a per-channel lookup table, leaving alpha alone.
func mapChannels(img image.Image, lut *[256]uint8) image.Image {
	switch src := img.(type) {
	case *image.Gray:
		out := image.NewGray(src.Bounds())
		for i, v := range src.Pix {
			out.Pix[i] = lut[v]
		}
		return out
	case *image.RGBA:
		out := image.NewRGBA(src.Bounds())
		for i := 0; i < len(src.Pix); i += 4 {
			out.Pix[i] = lut[src.Pix[i]]
			out.Pix[i+1] = lut[src.Pix[i+1]]
			out.Pix[i+2] = lut[src.Pix[i+2]]
			out.Pix[i+3] = src.Pix[i+3]
		}
		return out
	default:
		return mapChannels(toRGBA(img), lut)
	}
}

// adjustContrast scales each channel linearly around the mid-gray point.
func adjustContrast(img image.Image, factor float64) image.Image {
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		lut[v] = clampByte(128 + (float64(v)-128)*factor)
	}
	return mapChannels(img, &lut)
}

// adjustBrightness scales each channel by the factor; factor 1.0 is a
// no-op, 0 < factor < 1 darkens, factor > 1 brightens.
func adjustBrightness(img image.Image, factor float64) image.Image {
	var lut [256]uint8
	for v := 0; v < 256; v++ {
		lut[v] = clampByte(float64(v) * factor)
	}
	return mapChannels(img, &lut)
}

// sharpen runs the fixed 3x3 unsharp kernel over every channel.
func sharpen(img image.Image) image.Image {
	return convolve3x3(img, sharpenKernel, 16)
}

func convolve3x3(img image.Image, kernel [9]int, divisor int) image.Image {
	switch src := img.(type) {
	case *image.Gray:
		out := image.NewGray(src.Bounds())
		convolvePlane(src.Pix, out.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy(), 1, kernel, divisor)
		return out
	case *image.RGBA:
		out := image.NewRGBA(src.Bounds())
		w, h := src.Rect.Dx(), src.Rect.Dy()
		for ch := 0; ch < 3; ch++ {
			convolvePlane(src.Pix[ch:], out.Pix[ch:], src.Stride, w, h, 4, kernel, divisor)
		}
		for i := 3; i < len(src.Pix); i += 4 {
			out.Pix[i] = src.Pix[i]
		}
		return out
	default:
		return convolve3x3(toRGBA(img), kernel, divisor)
	}
}

// convolvePlane convolves one channel plane. Border coordinates are
// clamped to the image edge.
func convolvePlane(src, dst []uint8, stride, w, h, step int, kernel [9]int, divisor int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			k := 0
			for ky := -1; ky <= 1; ky++ {
				sy := clampInt(y+ky, 0, h-1)
				for kx := -1; kx <= 1; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					sum += int(src[sy*stride+sx*step]) * kernel[k]
					k++
				}
			}
			v := sum / divisor
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			dst[y*stride+x*step] = uint8(v)
		}
	}
}

// medianFilter is a 3x3 median pass. Known to smear fine text at low
// DPI.
func medianFilter(img image.Image) image.Image {
	switch src := img.(type) {
	case *image.Gray:
		out := image.NewGray(src.Bounds())
		medianPlane(src.Pix, out.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy(), 1)
		return out
	case *image.RGBA:
		out := image.NewRGBA(src.Bounds())
		w, h := src.Rect.Dx(), src.Rect.Dy()
		for ch := 0; ch < 3; ch++ {
			medianPlane(src.Pix[ch:], out.Pix[ch:], src.Stride, w, h, 4)
		}
		for i := 3; i < len(src.Pix); i += 4 {
			out.Pix[i] = src.Pix[i]
		}
		return out
	default:
		return medianFilter(toRGBA(img))
	}
}

func medianPlane(src, dst []uint8, stride, w, h, step int) {
	var window [9]uint8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			k := 0
			for ky := -1; ky <= 1; ky++ {
				sy := clampInt(y+ky, 0, h-1)
				for kx := -1; kx <= 1; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					window[k] = src[sy*stride+sx*step]
					k++
				}
			}
			dst[y*stride+x*step] = median9(window)
		}
	}
}

// median9 returns the median of 9 values by insertion sort; the window
// is tiny so this beats a general sort.
func median9(w [9]uint8) uint8 {
	for i := 1; i < 9; i++ {
		v := w[i]
		j := i - 1
		for j >= 0 && w[j] > v {
			w[j+1] = w[j]
			j--
		}
		w[j+1] = v
	}
	return w[4]
}

// binarize thresholds against the fully enhanced image: every pixel
// below the threshold goes black, everything else white. The image is
// reduced to a single channel first.
func binarize(img image.Image, threshold int) *image.Gray {
	gray := grayscale(img)
	out := image.NewGray(gray.Bounds())
	for i, v := range gray.Pix {
		if int(v) < threshold {
			out.Pix[i] = 0
		} else {
			out.Pix[i] = 255
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
