//go:build !ebiten

package ebitengine

import (
	"errors"

	"github.com/valerio/go-chroma/chroma/backend"
	"github.com/valerio/go-chroma/chroma/video"
)

// ErrUnavailable is returned by builds without the ebiten tag.
var ErrUnavailable = errors.New("ebiten backend not available - build with -tags ebiten to enable")

type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	return ErrUnavailable
}

func (b *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	return nil, ErrUnavailable
}

func (b *Backend) Cleanup() error {
	return nil
}
