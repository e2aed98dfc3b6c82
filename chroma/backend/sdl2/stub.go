//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/video"
)

// ErrUnavailable is returned by builds without the sdl2 tag.
var ErrUnavailable = errors.New("SDL2 backend not available - build with -tags sdl2 to enable")

// Backend keeps the package importable without the SDL2 development
// libraries. Every call fails with ErrUnavailable.
type Backend struct{}

func New() *Backend { return &Backend{} }

func (s *Backend) Init(backend.BackendConfig) error { return ErrUnavailable }

func (s *Backend) Update(*video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, ErrUnavailable
}

func (s *Backend) Cleanup() error { return nil }
