// Package audio mirrors the buzzer output as a tone on the host speaker.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/hardware"
	"github.com/cbodonnell/simon/pkg/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	// DefaultSampleRate is the speaker sample rate
	DefaultSampleRate beep.SampleRate = 44100
	// DefaultToneFrequency is the buzzer tone in Hz
	DefaultToneFrequency = 880
)

// Tone is a continuous tone that can be switched on and off.
type Tone interface {
	On()
	Off()
	Close()
}

// SpeakerTone plays a sine tone through the default audio device.
type SpeakerTone struct {
	ctrl *beep.Ctrl
}

// NewSpeakerTone initializes the speaker and queues a paused sine tone.
func NewSpeakerTone(sampleRate beep.SampleRate, frequency int) (*SpeakerTone, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %v", err)
	}
	sine, err := generators.SineTone(sampleRate, float64(frequency))
	if err != nil {
		speaker.Close()
		return nil, fmt.Errorf("failed to create sine tone: %v", err)
	}
	ctrl := &beep.Ctrl{Streamer: sine, Paused: true}
	speaker.Play(ctrl)
	return &SpeakerTone{ctrl: ctrl}, nil
}

func (t *SpeakerTone) On() {
	speaker.Lock()
	t.ctrl.Paused = false
	speaker.Unlock()
}

func (t *SpeakerTone) Off() {
	speaker.Lock()
	t.ctrl.Paused = true
	speaker.Unlock()
}

func (t *SpeakerTone) Close() {
	speaker.Close()
}

// Board decorates a board so the buzzer output also drives a tone.
type Board struct {
	hardware.Board
	lock sync.Mutex
	tone Tone
}

// WithTone wraps board so that SetBuzzer also switches tone.
// A nil tone leaves the buzzer silent on the host.
func WithTone(board hardware.Board, tone Tone) *Board {
	return &Board{
		Board: board,
		tone:  tone,
	}
}

// WithSpeaker wraps board with a speaker tone. If no audio device is available
// the board is returned unchanged apart from a warning, the game runs without sound.
func WithSpeaker(board hardware.Board) hardware.Board {
	tone, err := NewSpeakerTone(DefaultSampleRate, DefaultToneFrequency)
	if err != nil {
		log.Warn("Audio initialization failed, continuing without sound: %v", err)
		return board
	}
	return WithTone(board, tone)
}

func (b *Board) SetBuzzer(on bool) {
	b.Board.SetBuzzer(on)

	b.lock.Lock()
	defer b.lock.Unlock()
	if b.tone == nil {
		return
	}
	if on {
		b.tone.On()
	} else {
		b.tone.Off()
	}
}

func (b *Board) Close() error {
	b.lock.Lock()
	if b.tone != nil {
		b.tone.Close()
		b.tone = nil
	}
	b.lock.Unlock()
	return b.Board.Close()
}
