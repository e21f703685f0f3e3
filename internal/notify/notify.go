// Package notify delivers planner notifications over pluggable channels.
// The dispatcher treats every channel uniformly: success or failure, no
// channel-specific retry policy. Retry happens implicitly when an unmarked
// match is re-evaluated on the next scheduler pass.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

// Message is a channel-agnostic notification payload.
type Message struct {
	Title string
	Body  string
}

// Channel is one delivery transport (email, web push, telegram).
type Channel interface {
	Name() string
	Send(ctx context.Context, p *domain.Profile, msg Message) error
}

// Dispatcher fans a message out to the channels a profile has enabled.
type Dispatcher struct {
	channels []Channel
	log      *zap.Logger
}

// NewDispatcher creates a Dispatcher over the given channels.
func NewDispatcher(log *zap.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels, log: log}
}

// Send delivers msg on every channel the profile enables and returns true
// if at least one delivery succeeded. A profile with no enabled channel is
// a no-op and returns false, so the caller never marks the match as fired.
func (d *Dispatcher) Send(ctx context.Context, p *domain.Profile, msg Message) bool {
	attempted := false
	delivered := false
	for _, ch := range d.channels {
		if !p.HasChannel(ch.Name()) {
			continue
		}
		attempted = true
		if err := ch.Send(ctx, p, msg); err != nil {
			d.log.Error("delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("user_id", p.UserID),
				zap.Error(err))
			continue
		}
		delivered = true
	}
	if !attempted {
		d.log.Debug("no delivery channels configured", zap.String("user_id", p.UserID))
	}
	return delivered
}
