package tiffio

import (
	"fmt"
	"image"
	"io"

	"golang.org/x/image/tiff"
)

// decodeMask reads a single-plane label image into a flat uint32 label
// slice. Cellpose writes masks as 8 or 16-bit grayscale where 0 is
// background and each positive value is one object.
func decodeMask(r io.Reader) ([]uint32, int, int, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, 0, 0, err
	}
	bounds := img.Bounds()
	h, w := bounds.Dy(), bounds.Dx()
	labels := make([]uint32, h*w)

	switch m := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := m.Pix[y*m.Stride : y*m.Stride+w]
			for x, v := range row {
				labels[y*w+x] = uint32(v)
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				o := y*m.Stride + x*2
				labels[y*w+x] = uint32(m.Pix[o])<<8 | uint32(m.Pix[o+1])
			}
		}
	default:
		return nil, 0, 0, fmt.Errorf("mask is %T, expected grayscale", img)
	}
	return labels, h, w, nil
}
