// Package audioout plays emulator sound through the host audio device.
package audioout

import (
	"encoding/binary"
	"sync"

	"github.com/valerio/go-chroma/chroma/backend"
)

// bytesPerFrame is one stereo pair of signed 16 bit little endian samples,
// the format both oto and ebiten audio players consume.
const bytesPerFrame = 4

// Stream adapts an AudioSource to io.Reader. Reads never block: when the
// emulator falls behind the missing samples are silence.
type Stream struct {
	mu     sync.Mutex
	source backend.AudioSource
}

func NewStream(source backend.AudioSource) *Stream {
	return &Stream{source: source}
}

func (s *Stream) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	s.mu.Lock()
	samples := s.source.GetSamples(frames * 2)
	s.mu.Unlock()

	for i, sample := range samples {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(sample))
	}
	return frames * bytesPerFrame, nil
}
