package detect

import (
	"image"
	"image/color"
)

// Luma returns the 8-bit luminance of an 8-bit RGB triple using the same
// ITU-R 601 weights and rounding as color.GrayModel.
func Luma(r, g, b uint8) uint8 {
	r16, g16, b16 := uint32(r)*0x101, uint32(g)*0x101, uint32(b)*0x101
	y := (19595*r16 + 38470*g16 + 7471*b16 + 1<<15) >> 24
	return uint8(y)
}

// CountDark returns the number of pixels in img whose luminance is below
// threshold. *image.RGBA, *image.NRGBA and *image.Gray are read straight from
// their pixel buffers; anything else goes through color.GrayModel.
func CountDark(img image.Image, threshold uint8) int {
	b := img.Bounds()
	dark := 0

	switch src := img.(type) {
	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				if Luma(row[i], row[i+1], row[i+2]) < threshold {
					dark++
				}
			}
		}
	case *image.NRGBA:
		// Screen captures are opaque; alpha is ignored as it is for RGBA.
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				if Luma(row[i], row[i+1], row[i+2]) < threshold {
					dark++
				}
			}
		}
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
			for _, v := range row {
				if v < threshold {
					dark++
				}
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < threshold {
					dark++
				}
			}
		}
	}

	return dark
}
