//go:build oto

package audioout

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/valerio/go-chroma/chroma/backend"
)

// Player streams samples to the default output device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
}

// Open starts playback of source at sampleRate. Only one Player may exist
// per process.
func Open(source backend.AudioSource, sampleRate int) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	p := &Player{ctx: ctx, player: ctx.NewPlayer(NewStream(source))}
	p.player.Play()
	return p, nil
}

func (p *Player) Close() error {
	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}
