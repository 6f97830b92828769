package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

var errBoom = errors.New("boom")

func seedItem(t *testing.T, s *memory.Store, id, sku string) {
	t.Helper()
	require.NoError(t, s.Items().Create(context.Background(), &entity.Item{ID: id, SKU: sku, Name: "Item " + sku}))
}

func inMovement(itemID string, q int64) *entity.StockMovement {
	return &entity.StockMovement{ID: itemID + "-m", ItemID: itemID, QuantityChanged: q, Type: entity.MovementTypeIn, Reason: "test"}
}

func TestStore_CommitAplicaTodo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")

	err := s.Run(ctx, func(items repository.ItemRepository, movs repository.StockMovementRepository, _ repository.AlertRepository, _ repository.AuditRepository) error {
		m := inMovement("i1", 5)
		if err := movs.Append(ctx, m); err != nil {
			return err
		}
		return items.UpdateQuantity(ctx, "i1", 5, m.Sequence, m.CreatedAt)
	})
	require.NoError(t, err)

	item, err := s.Items().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), item.Quantity)
	assert.Equal(t, int64(1), item.LastMovementSeq)

	history, err := s.Movements().ListByItem(ctx, "i1", nil, nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].Sequence)
}

func TestStore_ErrorRevierte(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")

	err := s.Run(ctx, func(items repository.ItemRepository, movs repository.StockMovementRepository, _ repository.AlertRepository, _ repository.AuditRepository) error {
		m := inMovement("i1", 5)
		require.NoError(t, movs.Append(ctx, m))
		require.NoError(t, items.UpdateQuantity(ctx, "i1", 5, m.Sequence, m.CreatedAt))
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	item, _ := s.Items().GetByID(ctx, "i1")
	assert.Equal(t, int64(0), item.Quantity)
	history, _ := s.Movements().ListByItem(ctx, "i1", nil, nil)
	assert.Empty(t, history)
}

func TestStore_ContextoCanceladoNoPersiste(t *testing.T) {
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")

	ctx, cancel := context.WithCancel(context.Background())
	err := s.Run(ctx, func(_ repository.ItemRepository, movs repository.StockMovementRepository, _ repository.AlertRepository, _ repository.AuditRepository) error {
		require.NoError(t, movs.Append(ctx, inMovement("i1", 1)))
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	history, _ := s.Movements().ListByItem(context.Background(), "i1", nil, nil)
	assert.Empty(t, history)
}

// Las lecturas fuera de la tx no ven escrituras pendientes.
func TestStore_LecturaAisladaDeTxEnCurso(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")

	err := s.Run(ctx, func(items repository.ItemRepository, movs repository.StockMovementRepository, _ repository.AlertRepository, _ repository.AuditRepository) error {
		require.NoError(t, items.UpdateQuantity(ctx, "i1", 9, 1, time.Now()))
		inside, _ := items.GetByID(ctx, "i1")
		outside, _ := s.Items().GetByID(ctx, "i1")
		assert.Equal(t, int64(9), inside.Quantity, "la tx ve sus propias escrituras")
		assert.Equal(t, int64(0), outside.Quantity, "fuera de la tx se ve el estado confirmado")
		return nil
	})
	require.NoError(t, err)
}

func TestStore_GetForUpdateSerializa(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(items repository.ItemRepository, _ repository.StockMovementRepository, _ repository.AlertRepository, _ repository.AuditRepository) error {
			if _, err := items.GetForUpdate(ctx, "i1"); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	err := s.Run(short, func(items repository.ItemRepository, _ repository.StockMovementRepository, _ repository.AlertRepository, _ repository.AuditRepository) error {
		_, err := items.GetForUpdate(short, "i1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded, "la fila sigue bloqueada por la primera tx")

	close(release)
	require.NoError(t, <-done)
}

func TestStore_AppendSecuenciaYFechaCrecientes(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := memory.NewStore().WithClock(func() time.Time { return fixed })
	seedItem(t, s, "i1", "SKU-1")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Movements().Append(ctx, inMovement("i1", 1)))
	}
	history, err := s.Movements().ListByItem(ctx, "i1", nil, nil)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.Equal(t, history[i-1].Sequence+1, history[i].Sequence)
		assert.True(t, history[i].CreatedAt.After(history[i-1].CreatedAt), "created_at estrictamente creciente con reloj fijo")
	}
}

func TestStore_AppendRechazaMovimientoInvalido(t *testing.T) {
	s := memory.NewStore()
	err := s.Movements().Append(context.Background(), &entity.StockMovement{ItemID: "i1", Type: entity.MovementTypeIn, Reason: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_SKUDuplicado(t *testing.T) {
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")
	err := s.Items().Create(context.Background(), &entity.Item{ID: "i2", SKU: "SKU-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStore_UnaAlertaActivaPorTipo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	alerts := s.Alerts()
	now := time.Now()

	require.NoError(t, alerts.Create(ctx, &entity.Alert{ID: "a1", ItemID: "i1", Type: entity.AlertTypeLowStock, Status: entity.AlertStatusActive, CreatedAt: now}))
	err := alerts.Create(ctx, &entity.Alert{ID: "a2", ItemID: "i1", Type: entity.AlertTypeLowStock, Status: entity.AlertStatusActive, CreatedAt: now})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, alerts.Create(ctx, &entity.Alert{ID: "a3", ItemID: "i1", Type: entity.AlertTypeExpiring, Status: entity.AlertStatusActive, CreatedAt: now}))

	require.NoError(t, alerts.Resolve(ctx, "a1", "u1", now))
	assert.ErrorIs(t, alerts.Resolve(ctx, "a1", "u1", now), domain.ErrConflict)
	assert.ErrorIs(t, alerts.Resolve(ctx, "nope", "u1", now), domain.ErrNotFound)

	active, err := alerts.List(ctx, repository.AlertFilter{Status: entity.AlertStatusActive}, 0, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "a3", active[0].ID)
}

func TestStore_UpdateNoTocaCantidad(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")
	require.NoError(t, s.Items().UpdateQuantity(ctx, "i1", 7, 1, time.Now()))

	item, _ := s.Items().GetByID(ctx, "i1")
	item.Quantity = 1000
	item.Name = "Renombrado"
	require.NoError(t, s.Items().Update(ctx, item))

	got, _ := s.Items().GetByID(ctx, "i1")
	assert.Equal(t, "Renombrado", got.Name)
	assert.Equal(t, int64(7), got.Quantity)
}

func TestStore_ParchesPorColumnaNoPisanEscriturasAjenas(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedItem(t, s, "i1", "SKU-1")

	stale, err := s.Items().GetByID(ctx, "i1")
	require.NoError(t, err)

	err = s.Run(ctx, func(items repository.ItemRepository, movs repository.StockMovementRepository, _ repository.AlertRepository, _ repository.AuditRepository) error {
		if _, err := items.GetForUpdate(ctx, "i1"); err != nil {
			return err
		}
		m := inMovement("i1", 7)
		if err := movs.Append(ctx, m); err != nil {
			return err
		}
		if err := items.UpdateQuantity(ctx, "i1", 7, m.Sequence, m.CreatedAt); err != nil {
			return err
		}
		// Edición de catálogo confirmada en medio de la tx con una copia vieja.
		stale.Name = "Cable UTP"
		stale.Quantity = 999
		return s.Items().Update(ctx, stale)
	})
	require.NoError(t, err)

	item, err := s.Items().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Cable UTP", item.Name)
	assert.Equal(t, int64(7), item.Quantity)
	assert.Equal(t, int64(1), item.LastMovementSeq)

	// Fuera de tx, Update tampoco escribe cantidad.
	stale.Name = "Cable UTP cat6"
	require.NoError(t, s.Items().Update(ctx, stale))
	item, err = s.Items().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Cable UTP cat6", item.Name)
	assert.Equal(t, int64(7), item.Quantity)
}

func TestStore_BitacoraSoloConCommit(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	entry := func(id string) *entity.AuditLog {
		return &entity.AuditLog{ID: id, EntityType: entity.AuditEntityItem, EntityID: "i1", Action: entity.AuditActionUpdate, CreatedAt: time.Now()}
	}

	err := s.Run(ctx, func(_ repository.ItemRepository, _ repository.StockMovementRepository, _ repository.AlertRepository, audits repository.AuditRepository) error {
		if err := audits.Create(ctx, entry("a1")); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	require.NoError(t, s.Audits().Create(ctx, entry("a2")))
	list, err := s.Audits().ListByEntity(ctx, entity.AuditEntityItem, "i1", 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a2", list[0].ID)
}
