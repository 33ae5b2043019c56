// Package mock provides an in-memory audio output for tests and for running
// without a sound device.
package mock

import (
	"fmt"
	"sync"
	"time"
)

// Output simulates an audio backend. Tracks don't progress on their own;
// tests move the clock with Advance and FinishTrack.
type Output struct {
	mu           sync.Mutex
	loaded       bool
	playing      bool
	position     time.Duration
	duration     time.Duration
	finished     bool
	volume       float64
	src          string
	failNextPlay error
	failNextLoad error
	loadCalls    int
	playCalls    int
}

// New creates an unloaded mock output.
func New() *Output {
	return &Output{duration: 3 * time.Minute}
}

func (o *Output) Load(src string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loadCalls++
	if o.failNextLoad != nil {
		err := o.failNextLoad
		o.failNextLoad = nil
		return err
	}
	o.loaded = true
	o.playing = false
	o.finished = false
	o.position = 0
	o.src = src
	return nil
}

func (o *Output) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playCalls++
	if o.failNextPlay != nil {
		err := o.failNextPlay
		o.failNextPlay = nil
		return err
	}
	if !o.loaded {
		return fmt.Errorf("no track loaded")
	}
	o.playing = true
	return nil
}

func (o *Output) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.playing = false
}

func (o *Output) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loaded = false
	o.playing = false
	o.finished = false
	o.position = 0
	o.src = ""
}

func (o *Output) Seek(position time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.loaded {
		return fmt.Errorf("no track loaded")
	}
	if position > o.duration {
		position = o.duration
	}
	o.position = position
	return nil
}

func (o *Output) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

func (o *Output) Duration() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.duration
}

func (o *Output) Finished() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.finished
}

func (o *Output) SetVolume(volume float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = volume
}

func (o *Output) Close() error {
	o.Stop()
	return nil
}

// Test helpers.

// SetDuration sets the length reported for the loaded track.
func (o *Output) SetDuration(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.duration = d
}

// Advance moves the playback clock forward while playing.
func (o *Output) Advance(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.playing {
		o.position += d
		if o.position > o.duration {
			o.position = o.duration
		}
	}
}

// FinishTrack marks the loaded track as played to its end.
func (o *Output) FinishTrack() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = o.duration
	o.finished = true
}

// FailNextPlay makes the next Play call return err.
func (o *Output) FailNextPlay(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failNextPlay = err
}

// FailNextLoad makes the next Load call return err.
func (o *Output) FailNextLoad(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failNextLoad = err
}

// Playing reports whether the output is currently audible.
func (o *Output) Playing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playing
}

// Src reports the last loaded source.
func (o *Output) Src() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.src
}

// Volume reports the last applied volume.
func (o *Output) Volume() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}
