package bridge

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"PPRelay/service/relay"
)

// NatsNotifier hands push-notification jobs to the downstream notify
// worker over NATS. The relay does not wait for or observe delivery.
type NatsNotifier struct {
	b *NatsBridge
}

func NewNatsNotifier(b *NatsBridge) *NatsNotifier { return &NatsNotifier{b: b} }

func (n *NatsNotifier) Notify(_ context.Context, note *relay.Notification) error {
	if n == nil || n.b == nil || n.b.nc == nil {
		return errors.New("notifier not initialized")
	}
	data, err := json.Marshal(note)
	if err != nil {
		return errors.Wrap(err, "marshal notification")
	}
	return n.b.nc.Publish(SubjectNotify, data)
}
