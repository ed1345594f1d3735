package clipboard

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"
)

var le = binary.LittleEndian

func opaqueImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func TestEncodeDIBOpaqueUses24Bit(t *testing.T) {
	dib := EncodeDIB(opaqueImage(4, 2), 150)

	if got := le.Uint32(dib[0:]); got != 40 {
		t.Errorf("header size = %d, want 40", got)
	}
	if got := int32(le.Uint32(dib[4:])); got != 4 {
		t.Errorf("width = %d, want 4", got)
	}
	if got := int32(le.Uint32(dib[8:])); got != 2 {
		t.Errorf("height = %d, want 2 (positive, bottom-up)", got)
	}
	if got := le.Uint16(dib[12:]); got != 1 {
		t.Errorf("planes = %d, want 1", got)
	}
	if got := le.Uint16(dib[14:]); got != 24 {
		t.Errorf("bit depth = %d, want 24 for an opaque image", got)
	}
	if got := le.Uint32(dib[16:]); got != 0 {
		t.Errorf("compression = %d, want 0 (BI_RGB)", got)
	}

	// 4 pixels * 3 bytes = 12, already aligned; 2 rows.
	if got := le.Uint32(dib[20:]); got != 24 {
		t.Errorf("image size = %d, want 24", got)
	}
	if len(dib) != 40+24 {
		t.Errorf("total size = %d, want 64", len(dib))
	}
}

func TestEncodeDIBAlphaUses32Bit(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 128})

	dib := EncodeDIB(img, 150)
	if got := le.Uint16(dib[14:]); got != 32 {
		t.Errorf("bit depth = %d, want 32 for an image with alpha", got)
	}

	// Bottom-up: (0,0) lands in the second stored row. BGRA order.
	stride := 2 * 4
	row := dib[40+stride:]
	if row[0] != 30 || row[1] != 20 || row[2] != 10 || row[3] != 128 {
		t.Errorf("unexpected BGRA bytes %v", row[:4])
	}
}

func TestEncodeDIBBottomUpRowOrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255}) // top pixel
	img.SetNRGBA(0, 1, color.NRGBA{R: 4, G: 5, B: 6, A: 255}) // bottom pixel

	dib := EncodeDIB(img, 150)
	stride := 4 // 1 pixel * 3 bytes padded to 4

	// First stored row is the image's bottom row.
	if dib[40] != 6 || dib[41] != 5 || dib[42] != 4 {
		t.Errorf("first stored row should be the bottom pixel, got %v", dib[40:43])
	}
	if dib[40+stride] != 3 || dib[40+stride+1] != 2 || dib[40+stride+2] != 1 {
		t.Errorf("second stored row should be the top pixel, got %v", dib[40+stride:40+stride+3])
	}
}

func TestEncodeDIBRowPadding(t *testing.T) {
	dib := EncodeDIB(opaqueImage(3, 1), 150)

	// 3 pixels * 3 bytes = 9, padded to 12.
	if got := le.Uint32(dib[20:]); got != 12 {
		t.Errorf("image size = %d, want 12 with row padding", got)
	}
	if len(dib) != 40+12 {
		t.Errorf("total size = %d, want 52", len(dib))
	}
}

func TestEncodeDIBResolution(t *testing.T) {
	dib := EncodeDIB(opaqueImage(1, 1), 150)

	// 150 dpi ≈ 5906 pixels per meter.
	ppm := le.Uint32(dib[24:])
	if ppm < 5900 || ppm > 5910 {
		t.Errorf("x resolution = %d ppm, want ~5906", ppm)
	}
	if got := le.Uint32(dib[28:]); got != ppm {
		t.Errorf("y resolution %d differs from x %d", got, ppm)
	}
}

func TestEncodeBMPWrapsDIB(t *testing.T) {
	img := opaqueImage(4, 2)
	dib := EncodeDIB(img, 150)
	bmp := EncodeBMP(img, 150)

	if bmp[0] != 'B' || bmp[1] != 'M' {
		t.Error("missing BM signature")
	}
	if got := le.Uint32(bmp[2:]); got != uint32(len(bmp)) {
		t.Errorf("file size field = %d, want %d", got, len(bmp))
	}
	if got := le.Uint32(bmp[10:]); got != 54 {
		t.Errorf("pixel data offset = %d, want 54", got)
	}
	if len(bmp) != 14+len(dib) {
		t.Errorf("BMP length = %d, want header plus DIB = %d", len(bmp), 14+len(dib))
	}
	for i := range dib {
		if bmp[14+i] != dib[i] {
			t.Fatalf("BMP body diverges from DIB at byte %d", i)
		}
	}
}

func TestImagePayloadFormats(t *testing.T) {
	payload, err := ImagePayload(opaqueImage(2, 2), 150)
	if err != nil {
		t.Fatalf("ImagePayload() returned error: %v", err)
	}

	formats := payload.Formats()
	if _, ok := formats["image/png"]; !ok {
		t.Error("expected image/png format")
	}
	if _, ok := formats["image/bmp"]; !ok {
		t.Error("expected image/bmp format")
	}
	if _, ok := formats["text/plain"]; ok {
		t.Error("image payload must not offer text")
	}
}

func TestPayloadRestrict(t *testing.T) {
	tests := []struct {
		format   string
		wantPNG  bool
		wantBMP  bool
	}{
		{"all", true, true},
		{"png", true, false},
		{"dib", false, true},
		{"garbage", true, true},
	}

	for _, tt := range tests {
		payload, err := ImagePayload(opaqueImage(2, 2), 150)
		if err != nil {
			t.Fatalf("ImagePayload() returned error: %v", err)
		}
		payload.Restrict(tt.format)

		formats := payload.Formats()
		if _, ok := formats["image/png"]; ok != tt.wantPNG {
			t.Errorf("Restrict(%q): image/png offered = %v, want %v", tt.format, ok, tt.wantPNG)
		}
		if _, ok := formats["image/bmp"]; ok != tt.wantBMP {
			t.Errorf("Restrict(%q): image/bmp offered = %v, want %v", tt.format, ok, tt.wantBMP)
		}
	}
}

func TestTextPayloadFormats(t *testing.T) {
	formats := TextPayload("x^2").Formats()
	for _, mime := range []string{"text/plain", "text/plain;charset=utf-8", "UTF8_STRING", "STRING"} {
		if string(formats[mime]) != "x^2" {
			t.Errorf("format %s = %q, want x^2", mime, formats[mime])
		}
	}
}

func TestTextPayloadEmptyStringStillOffered(t *testing.T) {
	formats := TextPayload("").Formats()
	if _, ok := formats["text/plain"]; !ok {
		t.Error("empty text is still a valid clipboard payload")
	}
}
