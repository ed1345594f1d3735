//go:build !linux

package clipboard

import (
	"image"

	atotto "github.com/atotto/clipboard"
)

// WriteText copies plain text through the platform clipboard helper.
func WriteText(text string) error {
	return atotto.WriteAll(text)
}

// WriteImage has no native path off Linux; callers save a PNG instead.
func WriteImage(img *image.NRGBA, dpi int, format string) error {
	return ErrImageUnsupported
}

// Serve is a no-op off Linux; the hidden serve command never runs there.
func Serve(p *Payload) error {
	return nil
}
