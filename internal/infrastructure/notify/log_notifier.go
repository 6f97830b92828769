package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.AlertNotifier = (*LogNotifier)(nil)

// LogNotifier publica los cambios de alertas en el log estructurado.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "alerts").Logger()}
}

// Notify registra una línea por alerta levantada (warn) o resuelta (info).
func (n *LogNotifier) Notify(_ context.Context, item *entity.Item, changes []inventory.AlertChange) error {
	for _, ch := range changes {
		ev := n.log.Info()
		if ch.Decision.IsRaise() {
			ev = n.log.Warn()
		}
		ev.Str("decision", string(ch.Decision)).
			Str("alert_id", ch.Alert.ID).
			Str("alert_type", ch.Alert.Type).
			Str("item_id", item.ID).
			Str("sku", item.SKU).
			Int64("quantity", item.Quantity).
			Int64("minimum_stock", item.MinimumStock).
			Msg(ch.Alert.Message)
	}
	return nil
}
