// Package notify delivers alerts to users over whatever channels they have
// configured. Delivery is strictly best-effort: a sink failure is logged and
// never propagates into the flow that triggered the alert.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/smartspend/smartspend/internal/domain"
)

// Message is a channel-agnostic notification payload.
type Message struct {
	Subject string
	Text    string
}

// Sink is one delivery channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, user *domain.User, msg Message) error
}

// Dispatcher fans a message out to every configured sink.
type Dispatcher struct {
	sinks []Sink
	log   zerolog.Logger
}

// NewDispatcher builds a dispatcher over the given sinks.
func NewDispatcher(log zerolog.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, log: log}
}

// Notify sends msg to the user on every sink. Failures are logged per sink;
// Notify itself never fails.
func (d *Dispatcher) Notify(ctx context.Context, user *domain.User, msg Message) {
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, user, msg); err != nil {
			d.log.Warn().Err(err).
				Str("sink", sink.Name()).
				Str("user_id", user.ID).
				Msg("notification delivery failed")
		}
	}
}
