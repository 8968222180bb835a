package email

import (
	"context"
	"errors"
	"sync"
)

// Recorder is an in-memory Notifier that keeps every rendered message. Tests
// use it to assert what was sent; Fail makes every Send return an error.
type Recorder struct {
	mu   sync.Mutex
	sent []Message
	Fail bool
}

var ErrRecorderFailure = errors.New("recorder: forced failure")

func (r *Recorder) Send(_ context.Context, msg *Message) error {
	if r.Fail {
		return ErrRecorderFailure
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, *msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}

// Count returns how many messages used template t.
func (r *Recorder) Count(t Template) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.sent {
		if m.Template == t {
			n++
		}
	}
	return n
}
