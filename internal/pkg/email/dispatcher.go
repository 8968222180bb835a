package email

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"github.com/acesped/portal/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// Dispatcher hands each notification to its own goroutine. Delivery is
// attempted at most once, bounded by timeout, and failures are logged only.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

var _ Sender = (*Dispatcher)(nil)

func NewDispatcher(notifier Notifier, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{notifier: notifier, timeout: timeout, logger: logger}
}

// Notify never blocks on delivery and never reports an error to the caller.
func (d *Dispatcher) Notify(template Template, to mail.Address, data map[string]string) {
	msg := &Message{Template: template, To: to, Data: data}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error().Interface("panic", r).Str("template", string(template)).Msg("Notification panicked")
				metrics.NotificationsTotal.WithLabelValues(string(template), "failed").Inc()
			}
		}()
		d.deliver(msg)
	}()
}

func (d *Dispatcher) deliver(msg *Message) {
	log := d.logger.With().Str("template", string(msg.Template)).Str("to", msg.To.Address).Logger()

	if err := msg.Render(); err != nil {
		log.Error().Err(err).Msg("Failed to render notification")
		metrics.NotificationsTotal.WithLabelValues(string(msg.Template), "failed").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.notifier.Send(ctx, msg); err != nil {
		log.Error().Err(err).Msg("Failed to send notification")
		metrics.NotificationsTotal.WithLabelValues(string(msg.Template), "failed").Inc()
		return
	}
	log.Debug().Msg("Notification sent")
	metrics.NotificationsTotal.WithLabelValues(string(msg.Template), "sent").Inc()
}

// Wait blocks until every notification handed off so far has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight notifications or until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
