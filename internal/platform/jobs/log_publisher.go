package jobs

import (
	"context"

	"go.uber.org/zap"

	"github.com/Noore22/Cake-Craft/internal/services"
)

// LogOrderPublisher writes order events to the log when no topic is configured.
type LogOrderPublisher struct {
	logger *zap.Logger
}

var _ services.OrderEventPublisher = (*LogOrderPublisher)(nil)

// NewLogOrderPublisher falls back to a no-op logger when logger is nil.
func NewLogOrderPublisher(logger *zap.Logger) *LogOrderPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogOrderPublisher{logger: logger}
}

func (p *LogOrderPublisher) PublishOrderEvent(ctx context.Context, event services.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Info("order event",
		zap.String("eventType", event.Type),
		zap.String("orderId", event.OrderID),
		zap.String("checkoutId", event.CheckoutID),
		zap.String("previousStatus", event.PreviousStatus),
		zap.String("status", event.CurrentStatus),
		zap.String("total", event.TotalAmount.StringFixed(2)),
		zap.Time("occurredAt", event.OccurredAt),
	)
	return nil
}
