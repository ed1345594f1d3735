// Package clipboard packages rendered bitmaps for clipboard transfer and
// writes them to the system clipboard. The DIB encoder produces the exact
// CF_DIB byte layout Windows clipboard consumers expect; on Wayland the
// same bytes are served as image/bmp next to image/png.
package clipboard

import (
	"encoding/binary"
	"image"
)

// BITMAPINFOHEADER is 40 bytes; a BMP file prepends a 14-byte file header.
const (
	infoHeaderSize = 40
	fileHeaderSize = 14
)

// EncodeDIB packs an image into CF_DIB format: a BITMAPINFOHEADER followed
// by bottom-up pixel rows, each padded to a 4-byte boundary. Fully opaque
// images use 24-bit BGR; anything with an alpha channel uses 32-bit BGRA.
// No compression (BI_RGB) in either case.
func EncodeDIB(img *image.NRGBA, dpi int) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	bpp := 32
	if opaque(img) {
		bpp = 24
	}

	bytesPerPixel := bpp / 8
	stride := (w*bytesPerPixel + 3) &^ 3
	imageSize := stride * h

	buf := make([]byte, infoHeaderSize+imageSize)
	writeInfoHeader(buf, w, h, bpp, imageSize, dpi)

	// Rows run bottom-up: the last image row is written first.
	for y := 0; y < h; y++ {
		row := buf[infoHeaderSize+(h-1-y)*stride:]
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			o := x * bytesPerPixel
			row[o+0] = c.B
			row[o+1] = c.G
			row[o+2] = c.R
			if bpp == 32 {
				row[o+3] = c.A
			}
		}
	}

	return buf
}

// EncodeBMP wraps the DIB in a BITMAPFILEHEADER, producing a complete .bmp
// file image. Stripping the first 14 bytes recovers the CF_DIB payload.
func EncodeBMP(img *image.NRGBA, dpi int) []byte {
	dib := EncodeDIB(img, dpi)

	buf := make([]byte, fileHeaderSize+len(dib))
	buf[0] = 'B'
	buf[1] = 'M'
	binary.LittleEndian.PutUint32(buf[2:], uint32(len(buf)))
	binary.LittleEndian.PutUint32(buf[10:], fileHeaderSize+infoHeaderSize)
	copy(buf[fileHeaderSize:], dib)
	return buf
}

func writeInfoHeader(buf []byte, w, h, bpp, imageSize, dpi int) {
	le := binary.LittleEndian
	le.PutUint32(buf[0:], infoHeaderSize)
	le.PutUint32(buf[4:], uint32(int32(w)))
	le.PutUint32(buf[8:], uint32(int32(h))) // positive height: bottom-up
	le.PutUint16(buf[12:], 1)               // planes
	le.PutUint16(buf[14:], uint16(bpp))
	le.PutUint32(buf[16:], 0) // BI_RGB
	le.PutUint32(buf[20:], uint32(imageSize))

	// Pixels per meter: dpi * 10000 / 254, rounded.
	ppm := uint32((dpi*10000 + 127) / 254)
	le.PutUint32(buf[24:], ppm)
	le.PutUint32(buf[28:], ppm)
	le.PutUint32(buf[32:], 0) // palette colors
	le.PutUint32(buf[36:], 0) // important colors
}

func opaque(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		rowStart := img.PixOffset(b.Min.X, y)
		rowEnd := img.PixOffset(b.Max.X, y)
		for i := rowStart + 3; i < rowEnd; i += 4 {
			if img.Pix[i] != 0xff {
				return false
			}
		}
	}
	return true
}
