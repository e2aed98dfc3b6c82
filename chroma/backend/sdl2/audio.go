//go:build sdl2

package sdl2

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-chroma/chroma/backend"
)

// audioQueue pushes samples with SDL_QueueAudio, keeping roughly
// targetFrames video frames of sound queued.
type audioQueue struct {
	device     sdl.AudioDeviceID
	source     backend.AudioSource
	sampleRate int
}

const targetFrames = 3

func openAudio(source backend.AudioSource, sampleRate int) (*audioQueue, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	spec := sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_S16SYS,
		Channels: 2,
		Samples:  1024,
	}
	device, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	sdl.PauseAudioDevice(device, false)
	return &audioQueue{device: device, source: source, sampleRate: sampleRate}, nil
}

func (q *audioQueue) fill() {
	perFrame := 2 * q.sampleRate / 60
	queued := int(sdl.GetQueuedAudioSize(q.device)) / 2
	want := targetFrames*perFrame - queued
	if want <= 0 {
		return
	}
	// stereo pairs only
	want &^= 1
	if want == 0 {
		return
	}

	samples := q.source.GetSamples(want)
	data := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*2)
	sdl.QueueAudio(q.device, data)
}

func (q *audioQueue) close() {
	sdl.CloseAudioDevice(q.device)
}
