// Package audio implements the playback output backends.
package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// Speaker plays local audio files through the system sound device. One track
// is loaded at a time; it starts paused and the engine drives the transport.
// Remote sources are rejected at load time.
type Speaker struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
	streamer    beep.StreamSeekCloser
	format      beep.Format
	ctrl        *beep.Ctrl
	vol         *effects.Volume
	volume      float64
	finished    *atomic.Bool
}

// NewSpeaker creates an output targeting a 44.1kHz device. The device itself
// is initialized lazily on the first load.
func NewSpeaker() *Speaker {
	return &Speaker{
		sampleRate: beep.SampleRate(44100),
		volume:     1,
	}
}

func (s *Speaker) Load(src string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if strings.Contains(src, "://") {
		return fmt.Errorf("remote sources are not playable locally: %s", src)
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(src)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported audio format: %s", filepath.Ext(src))
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}

	if !s.initialized {
		if err := speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to initialize sound device: %w", err)
		}
		s.initialized = true
	}

	s.streamer = streamer
	s.format = format

	// each load gets its own flag so a stale callback from a replaced
	// track cannot mark the new one finished
	fin := &atomic.Bool{}
	s.finished = fin

	resampled := beep.Resample(4, format.SampleRate, s.sampleRate, streamer)
	s.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	s.vol = &effects.Volume{Streamer: s.ctrl, Base: 2}
	s.applyVolumeLocked()

	// the callback runs on the speaker goroutine, so it only touches the
	// captured flag, never the Speaker mutex
	speaker.Play(beep.Seq(s.vol, beep.Callback(func() {
		fin.Store(true)
	})))
	return nil
}

func (s *Speaker) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return fmt.Errorf("no track loaded")
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (s *Speaker) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctrl == nil {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked unloads the current track. Held streamers are closed so the
// decoder releases the file handle.
func (s *Speaker) stopLocked() {
	if s.initialized {
		speaker.Clear()
	}
	if s.streamer != nil {
		s.streamer.Close()
		s.streamer = nil
	}
	s.ctrl = nil
	s.vol = nil
	s.finished = nil
}

func (s *Speaker) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()

	samples := s.format.SampleRate.N(position)
	if max := s.streamer.Len(); samples > max {
		samples = max
	}
	return s.streamer.Seek(samples)
}

func (s *Speaker) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := s.streamer.Position()
	speaker.Unlock()
	return s.format.SampleRate.D(pos)
}

func (s *Speaker) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streamer == nil {
		return 0
	}
	return s.format.SampleRate.D(s.streamer.Len())
}

func (s *Speaker) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished != nil && s.finished.Load()
}

func (s *Speaker) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	if s.vol != nil {
		speaker.Lock()
		s.applyVolumeLocked()
		speaker.Unlock()
	}
}

// applyVolumeLocked maps the linear [0,1] volume onto beep's exponential
// scale. Zero mutes outright since log2(0) is undefined.
func (s *Speaker) applyVolumeLocked() {
	if s.vol == nil {
		return
	}
	if s.volume <= 0 {
		s.vol.Silent = true
		return
	}
	s.vol.Silent = false
	s.vol.Volume = math.Log2(s.volume)
}

func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if s.initialized {
		speaker.Close()
		s.initialized = false
	}
	return nil
}
