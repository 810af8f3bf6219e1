// Package workflow is the boundary to the external scheduler that sequences
// transcription work: job submissions go out on a NATS subject, worker
// outcomes come back on another.
package workflow

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
)

// Bus is a thin NATS connection wrapper.
type Bus struct{ nc *nats.Conn }

// Connect dials NATS with endless reconnects.
func Connect(url string) (*Bus, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Bus{nc: nc}, nil
}

func (b *Bus) Close() {
	if b.nc != nil {
		_ = b.nc.Drain()
	}
}

func (b *Bus) PublishJSON(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.nc.Publish(subject, data)
}

func (b *Bus) subscribe(subject, queue string, handler nats.MsgHandler) (*nats.Subscription, error) {
	if queue == "" {
		return b.nc.Subscribe(subject, handler)
	}
	return b.nc.QueueSubscribe(subject, queue, handler)
}
