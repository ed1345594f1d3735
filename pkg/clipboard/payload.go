package clipboard

import (
	"bytes"
	stderrors "errors"
	"image"
	"image/png"
	"os"
)

// ErrImageUnsupported means this platform has no image clipboard path; the
// caller should offer a file save instead.
var ErrImageUnsupported = stderrors.New("image clipboard is not supported on this platform")

// Payload is the set of clipboard representations for one copy operation.
// It crosses the process boundary to the clipboard-owner subprocess as
// JSON, so the byte slices travel base64-encoded.
type Payload struct {
	PNG  []byte `json:"png,omitempty"`
	BMP  []byte `json:"bmp,omitempty"`
	Text string `json:"text,omitempty"`
	HasT bool   `json:"has_text,omitempty"`
}

// ImagePayload encodes img once into every format the clipboard offers.
func ImagePayload(img *image.NRGBA, dpi int) (*Payload, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &Payload{
		PNG: buf.Bytes(),
		BMP: EncodeBMP(img, dpi),
	}, nil
}

// Restrict drops image representations the caller does not want offered.
// format is "png", "dib" or "all"; anything else leaves the payload alone.
func (p *Payload) Restrict(format string) {
	switch format {
	case "png":
		p.BMP = nil
	case "dib":
		p.PNG = nil
	}
}

// TextPayload wraps plain text.
func TextPayload(text string) *Payload {
	return &Payload{Text: text, HasT: true}
}

// Formats maps MIME types to bytes for the Wayland clipboard owner.
func (p *Payload) Formats() map[string][]byte {
	formats := map[string][]byte{}
	if len(p.PNG) > 0 {
		formats["image/png"] = p.PNG
	}
	if len(p.BMP) > 0 {
		formats["image/bmp"] = p.BMP
	}
	if p.HasT {
		text := []byte(p.Text)
		formats["text/plain;charset=utf-8"] = text
		formats["text/plain"] = text
		formats["UTF8_STRING"] = text
		formats["STRING"] = text
	}
	return formats
}

// SavePNG writes the rendered image to a file, the fallback when no image
// clipboard is available.
func SavePNG(img *image.NRGBA, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
