package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// LedgerService registra movimientos de stock y mantiene la cantidad cacheada de cada artículo
// consistente con su libro. Validación, append, actualización de cantidad y alertas se ejecutan
// como una sola unidad bajo el bloqueo del artículo.
type LedgerService struct {
	txRunner  TxRunner
	items     repository.ItemRepository
	movements repository.StockMovementRepository
	alerts    repository.AlertRepository
	locker    ItemLocker
	evaluator *domaininv.AlertEvaluator
	notifier  AlertNotifier
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedgerService construye el servicio. items, movements y alerts se usan solo para lecturas fuera de tx.
func NewLedgerService(
	txRunner TxRunner,
	items repository.ItemRepository,
	movements repository.StockMovementRepository,
	alerts repository.AlertRepository,
	locker ItemLocker,
	evaluator *domaininv.AlertEvaluator,
	notifier AlertNotifier,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		txRunner:  txRunner,
		items:     items,
		movements: movements,
		alerts:    alerts,
		locker:    locker,
		evaluator: evaluator,
		notifier:  notifier,
		log:       log.With().Str("component", "ledger").Logger(),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj usado para evaluar vencimientos (tests).
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// RecordMovementInput entrada para registrar un movimiento.
type RecordMovementInput struct {
	ItemID          string
	QuantityChanged int64
	MovementType    string
	Reason          string
	PerformedBy     string
}

// RecordResult estado del artículo después del movimiento, el movimiento almacenado
// y las alertas que cambiaron.
type RecordResult struct {
	Item     *entity.Item
	Movement *entity.StockMovement
	Alerts   []AlertChange
}

// RecordMovement valida la forma del movimiento antes de tocar bloqueos o almacenamiento, luego,
// bajo el bloqueo del artículo y en una sola transacción: bloquea la fila, valida que la cantidad
// no quede negativa, agrega el movimiento al libro, actualiza la cantidad y evalúa alertas.
func (s *LedgerService) RecordMovement(ctx context.Context, in RecordMovementInput) (*RecordResult, error) {
	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		ItemID:          in.ItemID,
		QuantityChanged: in.QuantityChanged,
		Type:            in.MovementType,
		Reason:          in.Reason,
		PerformedBy:     in.PerformedBy,
	}
	if err := mov.Validate(); err != nil {
		return nil, err
	}
	logger := s.log.With().
		Str("item_id", in.ItemID).
		Str("movement_type", in.MovementType).
		Int64("quantity", in.QuantityChanged).
		Str("performed_by", in.PerformedBy).
		Logger()

	unlock, err := s.locker.Lock(ctx, in.ItemID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("bloquear artículo: %w", err))
	}
	defer unlock()

	var result *RecordResult
	err = s.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.StockMovementRepository,
		alertRepo repository.AlertRepository,
		_ repository.AuditRepository,
	) error {
		item, err := lockActiveItem(ctx, itemRepo, in.ItemID)
		if err != nil {
			return err
		}
		newQty, err := domaininv.ValidateApply(item.Quantity, mov.Type, mov.QuantityChanged)
		if err != nil {
			return err
		}
		if err := movRepo.Append(ctx, mov); err != nil {
			return err
		}
		if err := itemRepo.UpdateQuantity(ctx, item.ID, newQty, mov.Sequence, mov.CreatedAt); err != nil {
			return err
		}
		at := mov.CreatedAt
		item.Quantity = newQty
		item.LastMovementSeq = mov.Sequence
		item.LastMovementAt = &at

		changes, err := s.applyAlerts(ctx, alertRepo, item, at)
		if err != nil {
			return err
		}
		result = &RecordResult{Item: item, Movement: mov, Alerts: changes}
		return nil
	})
	if err != nil {
		err = classifyError(err)
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			logger.Warn().Err(err).Msg("movimiento rechazado")
		case errors.Is(err, domain.ErrStorage):
			logger.Error().Err(err).Msg("movimiento revertido")
		}
		return nil, err
	}

	logger.Info().
		Int64("sequence", result.Movement.Sequence).
		Int64("new_quantity", result.Item.Quantity).
		Int("alerts", len(result.Alerts)).
		Msg("movimiento registrado")
	s.notify(ctx, result.Item, result.Alerts)
	return result, nil
}

// RefreshAlerts reevalúa las alertas de un artículo sin movimiento (por ejemplo cuando su fecha de
// vencimiento entra en la ventana). Usa el mismo bloqueo que RecordMovement.
func (s *LedgerService) RefreshAlerts(ctx context.Context, itemID string) ([]AlertChange, error) {
	unlock, err := s.locker.Lock(ctx, itemID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("bloquear artículo: %w", err))
	}
	defer unlock()

	var (
		item    *entity.Item
		changes []AlertChange
	)
	err = s.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		_ repository.StockMovementRepository,
		alertRepo repository.AlertRepository,
		_ repository.AuditRepository,
	) error {
		var err error
		item, err = lockActiveItem(ctx, itemRepo, itemID)
		if err != nil {
			return err
		}
		changes, err = s.applyAlerts(ctx, alertRepo, item, s.now())
		return err
	})
	if err != nil {
		return nil, classifyError(err)
	}
	s.notify(ctx, item, changes)
	return changes, nil
}

// CreateItem registra el artículo con cantidad 0, su entrada de bitácora y sus alertas iniciales
// en una sola tx. Si la evaluación de alertas falla el artículo no queda registrado.
func (s *LedgerService) CreateItem(ctx context.Context, item *entity.Item) ([]AlertChange, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, item.ID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("bloquear artículo: %w", err))
	}
	defer unlock()

	item.Quantity = 0
	item.LastMovementSeq = 0
	item.LastMovementAt = nil
	var changes []AlertChange
	err = s.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		_ repository.StockMovementRepository,
		alertRepo repository.AlertRepository,
		auditRepo repository.AuditRepository,
	) error {
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		if err := writeAudit(ctx, auditRepo, entity.AuditActionCreate, item.CreatedBy, nil, item, item.CreatedAt); err != nil {
			return err
		}
		var err error
		changes, err = s.applyAlerts(ctx, alertRepo, item, item.CreatedAt)
		return err
	})
	if err != nil {
		return nil, classifyError(err)
	}
	s.log.Info().Str("item_id", item.ID).Str("sku", item.SKU).Int("alerts", len(changes)).Msg("artículo registrado")
	s.notify(ctx, item, changes)
	return changes, nil
}

// UpdateItem persiste metadatos y umbrales bajo el bloqueo del artículo, registra el antes y
// el después en la bitácora y reevalúa alertas con los umbrales nuevos, todo en una tx.
// La cantidad y el cursor del libro se conservan los de la fila bloqueada.
func (s *LedgerService) UpdateItem(ctx context.Context, item *entity.Item) ([]AlertChange, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	unlock, err := s.locker.Lock(ctx, item.ID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("bloquear artículo: %w", err))
	}
	defer unlock()

	var (
		after   entity.Item
		changes []AlertChange
	)
	err = s.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		_ repository.StockMovementRepository,
		alertRepo repository.AlertRepository,
		auditRepo repository.AuditRepository,
	) error {
		before, err := lockActiveItem(ctx, itemRepo, item.ID)
		if err != nil {
			return err
		}
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
		after = *item
		after.Quantity = before.Quantity
		after.LastMovementSeq = before.LastMovementSeq
		after.LastMovementAt = before.LastMovementAt
		after.CreatedAt = before.CreatedAt
		after.CreatedBy = before.CreatedBy
		after.ArchivedAt = nil
		if err := writeAudit(ctx, auditRepo, entity.AuditActionUpdate, item.UpdatedBy, before, &after, item.UpdatedAt); err != nil {
			return err
		}
		changes, err = s.applyAlerts(ctx, alertRepo, &after, s.now())
		return err
	})
	if err != nil {
		return nil, classifyError(err)
	}
	s.log.Info().Str("item_id", item.ID).Str("updated_by", item.UpdatedBy).Int("alerts", len(changes)).Msg("artículo actualizado")
	s.notify(ctx, &after, changes)
	return changes, nil
}

// ArchiveItem da de baja el artículo bajo su bloqueo y resuelve sus alertas activas en la misma tx.
// El historial se conserva; a partir de aquí RecordMovement responde NotFound.
func (s *LedgerService) ArchiveItem(ctx context.Context, itemID, by string) error {
	unlock, err := s.locker.Lock(ctx, itemID)
	if err != nil {
		return classifyError(fmt.Errorf("bloquear artículo: %w", err))
	}
	defer unlock()

	at := s.now()
	err = s.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		_ repository.StockMovementRepository,
		alertRepo repository.AlertRepository,
		auditRepo repository.AuditRepository,
	) error {
		before, err := lockActiveItem(ctx, itemRepo, itemID)
		if err != nil {
			return err
		}
		if err := itemRepo.Archive(ctx, itemID, by, at); err != nil {
			return err
		}
		after := *before
		after.ArchivedAt = &at
		after.UpdatedBy = by
		after.UpdatedAt = at
		if err := writeAudit(ctx, auditRepo, entity.AuditActionArchive, by, before, &after, at); err != nil {
			return err
		}
		for _, t := range []string{entity.AlertTypeLowStock, entity.AlertTypeExpiring, entity.AlertTypeOther} {
			a, err := alertRepo.GetActive(ctx, itemID, t)
			if err != nil {
				return err
			}
			if a == nil {
				continue
			}
			if err := alertRepo.Resolve(ctx, a.ID, by, at); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return classifyError(err)
	}
	s.log.Info().Str("item_id", itemID).Str("archived_by", by).Msg("artículo archivado")
	return nil
}

// ResolveAlert resuelve manualmente una alerta activa. Toma el bloqueo del artículo para no
// competir con la evaluación automática; ErrConflict si la alerta ya no estaba activa.
func (s *LedgerService) ResolveAlert(ctx context.Context, alertID, resolvedBy string) (*entity.Alert, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, classifyError(err)
	}
	if alert == nil {
		return nil, fmt.Errorf("%w: alerta %s", domain.ErrNotFound, alertID)
	}
	unlock, err := s.locker.Lock(ctx, alert.ItemID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("bloquear artículo: %w", err))
	}
	defer unlock()

	at := s.now()
	err = s.txRunner.Run(ctx, func(
		_ repository.ItemRepository,
		_ repository.StockMovementRepository,
		alertRepo repository.AlertRepository,
		_ repository.AuditRepository,
	) error {
		return alertRepo.Resolve(ctx, alertID, resolvedBy, at)
	})
	if err != nil {
		return nil, classifyError(err)
	}
	alert.Status = entity.AlertStatusResolved
	alert.ResolvedAt = &at
	alert.ResolvedBy = resolvedBy
	s.log.Info().Str("alert_id", alertID).Str("item_id", alert.ItemID).Str("resolved_by", resolvedBy).Msg("alerta resuelta manualmente")
	return alert, nil
}

// GetItem devuelve una instantánea del artículo. No toma el bloqueo del artículo.
func (s *LedgerService) GetItem(ctx context.Context, itemID string) (*entity.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, classifyError(err)
	}
	if item == nil || item.IsArchived() {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, itemID)
	}
	return item, nil
}

// ListMovements devuelve el historial del artículo en orden de secuencia, opcionalmente acotado
// por fecha (inclusive). Los artículos archivados conservan su historial consultable.
func (s *LedgerService) ListMovements(ctx context.Context, itemID string, from, to *time.Time) ([]*entity.StockMovement, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from posterior a to", domain.ErrInvalidInput)
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, classifyError(err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, itemID)
	}
	list, err := s.movements.ListByItem(ctx, itemID, from, to)
	if err != nil {
		return nil, classifyError(err)
	}
	return list, nil
}

// ProjectedQuantity reproduce el historial completo del artículo.
func (s *LedgerService) ProjectedQuantity(ctx context.Context, itemID string) (int64, error) {
	history, err := s.ListMovements(ctx, itemID, nil, nil)
	if err != nil {
		return 0, err
	}
	return domaininv.Project(history)
}

// Reconciliation compara la cantidad cacheada con la proyección del libro.
type Reconciliation struct {
	ItemID       string
	Cached       int64
	Projected    int64
	LastSequence int64
	Movements    int
	Consistent   bool
}

// Reconcile lee artículo e historial y reporta si la cantidad cacheada coincide con el libro.
// Una diferencia se registra en el log como error; nunca se corrige automáticamente.
func (s *LedgerService) Reconcile(ctx context.Context, itemID string) (*Reconciliation, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	history, err := s.movements.ListByItem(ctx, itemID, nil, nil)
	if err != nil {
		return nil, classifyError(err)
	}
	// El historial se lee después del artículo: se proyecta hasta el cursor del artículo para
	// no contar movimientos que entraron entre ambas lecturas.
	applied := history
	for i, m := range history {
		if m.Sequence > item.LastMovementSeq {
			applied = history[:i]
			break
		}
	}
	projected, err := domaininv.Project(applied)
	if err != nil {
		s.log.Error().Err(err).Str("item_id", itemID).Msg("historial inconsistente")
		return nil, fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	var lastSeq int64
	if n := len(applied); n > 0 {
		lastSeq = applied[n-1].Sequence
	}
	rec := &Reconciliation{
		ItemID:       itemID,
		Cached:       item.Quantity,
		Projected:    projected,
		LastSequence: lastSeq,
		Movements:    len(applied),
		Consistent:   projected == item.Quantity && lastSeq == item.LastMovementSeq,
	}
	if !rec.Consistent {
		s.log.Error().
			Str("item_id", itemID).
			Int64("cached", item.Quantity).
			Int64("projected", projected).
			Msg("cantidad cacheada difiere del libro")
	}
	return rec, nil
}

// applyAlerts consulta las alertas activas, evalúa y persiste los cambios dentro de la tx.
func (s *LedgerService) applyAlerts(ctx context.Context, alertRepo repository.AlertRepository, item *entity.Item, at time.Time) ([]AlertChange, error) {
	low, err := alertRepo.GetActive(ctx, item.ID, entity.AlertTypeLowStock)
	if err != nil {
		return nil, err
	}
	exp, err := alertRepo.GetActive(ctx, item.ID, entity.AlertTypeExpiring)
	if err != nil {
		return nil, err
	}
	active := map[string]*entity.Alert{entity.AlertTypeLowStock: low, entity.AlertTypeExpiring: exp}

	decisions := s.evaluator.Evaluate(item, domaininv.ActiveAlerts{LowStock: low != nil, Expiring: exp != nil}, s.now())
	changes := make([]AlertChange, 0, len(decisions))
	for _, d := range decisions {
		if d.IsRaise() {
			alert := &entity.Alert{
				ID:        uuid.New().String(),
				ItemID:    item.ID,
				Type:      d.AlertType(),
				Message:   domaininv.AlertMessage(d, item),
				Status:    entity.AlertStatusActive,
				CreatedAt: at,
			}
			if err := alertRepo.Create(ctx, alert); err != nil {
				return nil, err
			}
			changes = append(changes, AlertChange{Decision: d, Alert: alert})
			continue
		}
		alert := active[d.AlertType()]
		if err := alertRepo.Resolve(ctx, alert.ID, "", at); err != nil {
			return nil, err
		}
		resolvedAt := at
		alert.Status = entity.AlertStatusResolved
		alert.ResolvedAt = &resolvedAt
		changes = append(changes, AlertChange{Decision: d, Alert: alert})
	}
	return changes, nil
}

func (s *LedgerService) notify(ctx context.Context, item *entity.Item, changes []AlertChange) {
	if s.notifier == nil || len(changes) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, item, changes); err != nil {
		s.log.Warn().Err(err).Str("item_id", item.ID).Msg("notificar alertas")
	}
}

// classifyError deja pasar errores de dominio y de contexto; cualquier otro es fallo de almacenamiento.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrStorage),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}

// lockActiveItem bloquea la fila del artículo; ErrNotFound si no existe o está archivado.
func lockActiveItem(ctx context.Context, itemRepo repository.ItemRepository, itemID string) (*entity.Item, error) {
	item, err := itemRepo.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.IsArchived() {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, itemID)
	}
	return item, nil
}
