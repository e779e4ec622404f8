package usecase

import "context"

// Notifier fans ladder change signals out to interested parties: websocket
// subscribers listening for coarse table changes, and outbound webhooks
// carrying typed events. Implementations must not block the calling
// request; delivery is best effort and failures never fail the operation
// that triggered them.
type Notifier interface {
	TableChanged(ctx context.Context, table string)
	Event(ctx context.Context, eventType string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) TableChanged(context.Context, string) {}

func (noopNotifier) Event(context.Context, string, any) {}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}
