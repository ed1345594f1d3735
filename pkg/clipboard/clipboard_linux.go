//go:build linux

package clipboard

import (
	"bytes"
	"encoding/json"
	"image"
	"os"
	"os/exec"
	"syscall"

	atotto "github.com/atotto/clipboard"

	"latexclip/pkg/clipboard/internal/wayland"
)

// WriteText copies plain text. On Wayland a background owner process holds
// the selection; on X11 atotto shells out to the usual helpers.
func WriteText(text string) error {
	if os.Getenv("WAYLAND_DISPLAY") == "" {
		return atotto.WriteAll(text)
	}
	return spawnOwner(TextPayload(text))
}

// WriteImage copies a rendered bitmap as image/png plus image/bmp, or just
// one of the two when format narrows it. Only Wayland is supported; on X11
// the caller falls back to saving a file.
func WriteImage(img *image.NRGBA, dpi int, format string) error {
	if os.Getenv("WAYLAND_DISPLAY") == "" {
		return ErrImageUnsupported
	}
	payload, err := ImagePayload(img, dpi)
	if err != nil {
		return err
	}
	payload.Restrict(format)
	return spawnOwner(payload)
}

// spawnOwner re-executes this binary as a detached clipboard-owner
// subprocess. Clipboard ownership on Wayland requires a live client, and
// the CLI itself exits immediately.
func spawnOwner(p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	cmd := exec.Command(os.Args[0], "__clipboard-serve")
	cmd.Stdin = bytes.NewReader(data)
	// New session so the owner survives the parent's exit.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd.Start()
}

// Serve runs the Wayland clipboard owner until another application takes
// the selection. Called by the hidden serve command.
func Serve(p *Payload) error {
	return wayland.Serve(p.Formats())
}
