package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler consumes one delivery. A nil return acks it; an error nacks
// it, with requeue policy decided by the Router. Because the broker
// may redeliver, handlers must tolerate seeing the same message twice.
type Handler interface {
	Handle(ctx context.Context, d amqp.Delivery) error
}

// JSON wraps a typed message function as a Handler, decoding the
// delivery body first. A body that does not decode is reported like
// any other handler error, so poison messages follow the Router's
// requeue policy instead of being silently dropped.
func JSON[T any](fn func(ctx context.Context, msg T) error) Handler {
	return jsonHandler[T]{fn: fn}
}

type jsonHandler[T any] struct {
	fn func(ctx context.Context, msg T) error
}

func (h jsonHandler[T]) Handle(ctx context.Context, d amqp.Delivery) error {
	var msg T
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return fmt.Errorf("decode %q delivery: %w", d.RoutingKey, err)
	}
	return h.fn(ctx, msg)
}
