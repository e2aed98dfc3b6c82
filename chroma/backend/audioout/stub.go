//go:build !oto

package audioout

import (
	"errors"

	"github.com/valerio/go-chroma/chroma/backend"
)

// ErrUnavailable is returned by builds without the oto tag.
var ErrUnavailable = errors.New("audio output not available - build with -tags oto to enable")

type Player struct{}

func Open(source backend.AudioSource, sampleRate int) (*Player, error) {
	return nil, ErrUnavailable
}

func (p *Player) Close() error { return nil }
