package notify

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
	"go.uber.org/zap"
)

// LogNotifier writes the notification to the log. It is used when no broker is configured.
type LogNotifier struct {
	adminEmail string
	logger     *zap.Logger
}

func NewLogNotifier(adminEmail string, logger *zap.Logger) *LogNotifier {
	return &LogNotifier{adminEmail: adminEmail, logger: logger}
}

func (n *LogNotifier) NotifyOrderPlaced(_ context.Context, order domain.Order) error {
	fields := []zap.Field{
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()),
		zap.Int("items", order.ItemCount()),
	}

	n.logger.Info(EventOrderPlacedCustomer, append(fields, zap.String("recipient", order.OwnerID))...)
	n.logger.Info(EventOrderPlacedAdmin, append(fields, zap.String("recipient", n.adminEmail))...)

	return nil
}
