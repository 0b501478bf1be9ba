package bridge

import (
	"context"
	"errors"

	"github.com/edgehem/sensorbridge/pkg/metrics"
	"github.com/edgehem/sensorbridge/pkg/mqtt"
	"go.uber.org/zap"
)

// Dispatcher drains the transport's event stream. Publish events go through
// decode and forward; connection-level events are only logged. A failure on
// one message never terminates the loop: a long-running bridge must survive
// both bad payloads and store hiccups.
type Dispatcher struct {
	forwarder *Forwarder
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger is replaced with a no-op
// logger.
func NewDispatcher(forwarder *Forwarder, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{forwarder: forwarder, logger: logger}
}

// Run consumes events until the stream closes or the context is canceled.
// Returns nil on stream close, ctx.Err() on cancellation.
func (d *Dispatcher) Run(ctx context.Context, events <-chan mqtt.Event) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				d.logger.Info("event stream closed, dispatcher stopping")
				return nil
			}
			d.handle(ctx, ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev mqtt.Event) {
	if ev.Kind != mqtt.EventPublish {
		d.logger.Debug("transport event",
			zap.String("kind", ev.Kind.String()),
			zap.String("detail", ev.Detail))
		return
	}

	metrics.MessagesReceived.WithLabelValues(ev.Topic).Inc()
	d.logger.Info("message received",
		zap.String("topic", ev.Topic),
		zap.Int("bytes", len(ev.Payload)))

	reading, err := DecodeReading(ev.Payload)
	if err != nil {
		metrics.DecodeErrors.WithLabelValues(ev.Topic).Inc()
		d.logger.Warn("dropping undecodable message",
			zap.String("topic", ev.Topic),
			zap.Error(err))
		return
	}

	if err := d.forwarder.Forward(ctx, ev.Topic, reading); err != nil {
		var unrouted *UnroutedTopicError
		if errors.As(err, &unrouted) {
			metrics.UnroutedTopics.WithLabelValues(ev.Topic).Inc()
			d.logger.Warn("no device configured for topic", zap.String("topic", ev.Topic))
			return
		}
		d.logger.Error("failed to forward reading",
			zap.String("topic", ev.Topic),
			zap.Error(err))
	}
}
