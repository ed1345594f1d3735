package render

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"time"

	"latexclip/pkg/logger"
)

// Capability describes what the external toolchain probe found.
type Capability struct {
	Available      bool      `json:"available"`
	LatexPath      string    `json:"latex_path"`
	RasterizerPath string    `json:"rasterizer_path"`
	CheckedAt      time.Time `json:"checked_at"`
}

// ProbeStore persists probe results between runs. Implemented by
// pkg/cache on top of sqlite.
type ProbeStore interface {
	// Get returns the cached capability for a PATH key, or ok=false when
	// absent or expired.
	Get(key string) (*Capability, bool, error)
	Put(key string, cap *Capability) error
	Invalidate() error
}

// Prober discovers the pdflatex + pdftoppm pair. Results are cached per
// PATH value, so installing the toolchain into a new directory is picked up
// without an explicit refresh.
type Prober struct {
	store           ProbeStore
	lookPath        func(string) (string, error)
	pinnedLatex     string
	pinnedRasterize string
}

// NewProber builds a prober. store may be nil, which disables persistence.
// Pinned paths skip PATH discovery for the corresponding binary.
func NewProber(store ProbeStore, pinnedLatex, pinnedRasterizer string) *Prober {
	return &Prober{
		store:           store,
		lookPath:        exec.LookPath,
		pinnedLatex:     pinnedLatex,
		pinnedRasterize: pinnedRasterizer,
	}
}

// Probe checks toolchain availability. refresh forces a live check and
// drops any cached result first.
func (p *Prober) Probe(refresh bool) (*Capability, error) {
	key := pathKey()

	if refresh && p.store != nil {
		if err := p.store.Invalidate(); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate probe cache")
		}
	}

	if !refresh && p.store != nil {
		if cached, ok, err := p.store.Get(key); err == nil && ok {
			logger.Debug().Bool("available", cached.Available).Msg("Toolchain probe served from cache")
			return cached, nil
		} else if err != nil {
			logger.Warn().Err(err).Msg("Probe cache read failed, probing live")
		}
	}

	cap := p.probeLive()

	if p.store != nil {
		if err := p.store.Put(key, cap); err != nil {
			logger.Warn().Err(err).Msg("Failed to persist probe result")
		}
	}

	return cap, nil
}

func (p *Prober) probeLive() *Capability {
	cap := &Capability{CheckedAt: time.Now()}

	cap.LatexPath = p.resolve(p.pinnedLatex, "pdflatex")
	cap.RasterizerPath = p.resolve(p.pinnedRasterize, "pdftoppm")
	cap.Available = cap.LatexPath != "" && cap.RasterizerPath != ""

	logger.Debug().
		Str("pdflatex", cap.LatexPath).
		Str("pdftoppm", cap.RasterizerPath).
		Bool("available", cap.Available).
		Msg("Probed LaTeX toolchain")

	return cap
}

func (p *Prober) resolve(pinned, name string) string {
	if pinned != "" {
		if _, err := os.Stat(pinned); err == nil {
			return pinned
		}
		logger.Warn().Str("path", pinned).Str("binary", name).Msg("Pinned toolchain path does not exist")
		return ""
	}
	path, err := p.lookPath(name)
	if err != nil {
		return ""
	}
	return path
}

// pathKey hashes the PATH environment variable. A changed PATH invalidates
// the cached probe naturally.
func pathKey() string {
	sum := sha256.Sum256([]byte(os.Getenv("PATH")))
	return hex.EncodeToString(sum[:])
}
