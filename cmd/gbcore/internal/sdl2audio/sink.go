// Package sdl2audio drains the APU's sample buffer into an SDL2 audio
// queue, giving the host-facing audio surface (gb/audio.Provider) a real
// output device.
package sdl2audio

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/corvee-dev/gbcore/gb/audio"
)

const (
	sampleRate  = 44100
	bufferSize  = 512
	targetBytes = 4 * 2048 // ~2048 queued stereo frames before topping up
)

// Sink owns one SDL2 audio device and periodically pulls samples from a
// Provider to keep its queue topped up.
type Sink struct {
	device sdl.AudioDeviceID
}

// Open initializes the SDL2 audio subsystem and opens a stereo 16-bit
// playback device at sampleRate.
func Open() (*Sink, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("sdl2audio: init: %w", err)
	}

	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 2,
		Samples:  bufferSize,
	}

	device, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, fmt.Errorf("sdl2audio: open device: %w", err)
	}

	sdl.PauseAudioDevice(device, false)
	return &Sink{device: device}, nil
}

// Close stops playback and releases the device.
func (s *Sink) Close() {
	sdl.CloseAudioDevice(s.device)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
}

// SampleRate reports the rate the core should be configured to produce,
// via gb.GameBoy.SetAudioSampleRate.
func (s *Sink) SampleRate() int {
	return sampleRate
}

// Drain pulls enough samples from provider to keep the device's queue near
// targetBytes and queues them for playback. Call this once per host frame.
func (s *Sink) Drain(provider audio.Provider) {
	queued := sdl.GetQueuedAudioSize(s.device)
	if queued >= targetBytes {
		return
	}

	framesNeeded := int(targetBytes-queued) / 4 // 4 bytes per stereo int16 frame
	samples := provider.GetSamples(framesNeeded)
	if len(samples) == 0 {
		return
	}

	bytes := int16SliceToBytes(samples)
	if err := sdl.QueueAudio(s.device, bytes); err != nil {
		return
	}
}

func int16SliceToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, v := range samples {
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}
