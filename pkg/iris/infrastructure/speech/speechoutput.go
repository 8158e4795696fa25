package speech

import (
	"context"
	"sync"

	"github.com/apex/log"
)

// Synthesizer plays `text` and returns when it's done or when `ctx` is cancelled, whichever comes first.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, locale string) error
}

type utterance struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// SpeechOutput plays one utterance at a time in the background. A new utterance interrupts the current one, and
// playback of the new one starts only after the old one has fully stopped, so they never overlap.
type SpeechOutput struct {
	mutex       sync.Mutex
	current     *utterance
	synthesizer Synthesizer
	logger      log.Interface
}

func NewSpeechOutput(synthesizer Synthesizer, logger log.Interface) *SpeechOutput {
	return &SpeechOutput{
		synthesizer: synthesizer,
		logger:      logger,
	}
}

func (s *SpeechOutput) Speak(text, locale string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	u := &utterance{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.current = u
	go func() {
		defer close(u.done)
		defer cancel()
		err := s.synthesizer.Synthesize(ctx, text, locale)
		if err != nil && ctx.Err() == nil {
			s.logger.WithError(err).WithField("text", text).Warn("failed to speak")
		}
	}()
}

// Stop interrupts the current utterance (if any) and waits until it's silent.
func (s *SpeechOutput) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stopLocked()
}

// Wait blocks until the current utterance ends by itself.
func (s *SpeechOutput) Wait() {
	s.mutex.Lock()
	u := s.current
	s.mutex.Unlock()
	if u != nil {
		<-u.done
	}
}

func (s *SpeechOutput) stopLocked() {
	if s.current == nil {
		return
	}
	s.current.cancel()
	<-s.current.done
	s.current = nil
}
