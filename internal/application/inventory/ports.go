package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de almacenamiento, pasando repositorios
// atados a esa tx. Si fn devuelve error, o el commit falla, no se persiste nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		movRepo repository.StockMovementRepository,
		alertRepo repository.AlertRepository,
		auditRepo repository.AuditRepository,
	) error) error
}

// ItemLocker exclusión mutua por artículo. Lock respeta la cancelación y el deadline de ctx.
// Artículos distintos nunca se bloquean entre sí.
type ItemLocker interface {
	Lock(ctx context.Context, itemID string) (func(), error)
}

// AlertChange alerta levantada o resuelta como efecto de una escritura.
type AlertChange struct {
	Decision domaininv.Decision
	Alert    *entity.Alert
}

// AlertNotifier destino de notificaciones; se invoca después del commit.
type AlertNotifier interface {
	Notify(ctx context.Context, item *entity.Item, changes []AlertChange) error
}
