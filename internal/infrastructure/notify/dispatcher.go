package notify

import (
	"context"

	"github.com/Keanutjardim/FRPadelLeague/internal/platform/changefeed"
	"github.com/Keanutjardim/FRPadelLeague/internal/platform/logging"
	"github.com/Keanutjardim/FRPadelLeague/internal/usecase"
)

// Dispatcher fans usecase notifications out to the change feed bus and,
// when a forwarder is configured, to the club's webhook endpoint. Both the
// bus and the forwarder may be nil; the dispatcher skips what is absent.
type Dispatcher struct {
	bus       *changefeed.Bus
	forwarder *WebhookForwarder
	logger    *logging.Logger
}

var _ usecase.Notifier = (*Dispatcher)(nil)

func NewDispatcher(bus *changefeed.Bus, forwarder *WebhookForwarder, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		bus:       bus,
		forwarder: forwarder,
		logger:    logger,
	}
}

// TableChanged signals websocket subscribers through the bus and mirrors
// the coarse signal to the webhook as a table.changed envelope.
func (d *Dispatcher) TableChanged(ctx context.Context, table string) {
	if d.bus != nil {
		d.bus.Publish(table)
	}
	if d.forwarder == nil {
		return
	}
	if err := d.forwarder.Enqueue(Envelope{Type: "table.changed", Table: table}); err != nil {
		d.logger.WarnContext(ctx, "webhook enqueue failed", "table", table, "error", err.Error())
	}
}

// Event forwards a typed event with its payload to the webhook endpoint.
func (d *Dispatcher) Event(ctx context.Context, eventType string, payload any) {
	if d.forwarder == nil {
		return
	}
	if err := d.forwarder.Enqueue(Envelope{Type: eventType, Payload: payload}); err != nil {
		d.logger.WarnContext(ctx, "webhook enqueue failed", "event", eventType, "error", err.Error())
	}
}
