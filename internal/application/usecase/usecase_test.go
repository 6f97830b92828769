package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

type suite struct {
	items  *usecase.ItemUseCase
	stock  *usecase.StockUseCase
	alerts *usecase.AlertUseCase
}

func newSuite(t *testing.T) *suite {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewLedgerService(
		store, store.Items(), store.Movements(), store.Alerts(),
		lock.NewKeyedMutex(),
		domaininv.NewAlertEvaluator(domaininv.AlertSettings{LowStockEnabled: true, ExpiryEnabled: true, ExpiryWindow: 7 * 24 * time.Hour}),
		nil, zerolog.Nop(),
	)
	return &suite{
		items:  usecase.NewItemUseCase(store.Items(), store.Audits(), ledger, zerolog.Nop()),
		stock:  usecase.NewStockUseCase(ledger),
		alerts: usecase.NewAlertUseCase(store.Alerts(), ledger),
	}
}

func createItem(t *testing.T, s *suite, sku string, minStock int64) *dto.ItemResponse {
	t.Helper()
	it, err := s.items.Create(context.Background(), "admin", dto.CreateItemRequest{
		Name: "Cable " + sku, SKU: sku, MinimumStock: minStock, UnitPrice: decimal.RequireFromString("1500.50"),
	})
	require.NoError(t, err)
	return it
}

func TestItemUseCase_Create(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)

	it := createItem(t, s, "CAB-1", 3)
	assert.NotEmpty(t, it.ID)
	assert.Zero(t, it.Quantity)
	assert.True(t, it.LowStock)
	assert.Equal(t, "admin", it.CreatedBy)
	assert.True(t, it.UnitPrice.Equal(decimal.RequireFromString("1500.5")))

	alerts, err := s.alerts.List(ctx, dto.AlertListQuery{ItemID: it.ID, Status: entity.AlertStatusActive})
	require.NoError(t, err)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, entity.AlertTypeLowStock, alerts.Alerts[0].AlertType)

	_, err = s.items.Create(ctx, "admin", dto.CreateItemRequest{Name: "Otro", SKU: "CAB-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = s.items.Create(ctx, "admin", dto.CreateItemRequest{Name: "", SKU: "CAB-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemUseCase_UpdateNoTocaCantidad(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	it := createItem(t, s, "CAB-1", 0)
	other := createItem(t, s, "CAB-2", 0)

	_, err := s.stock.RecordMovement(ctx, "u1", dto.RecordMovementRequest{ItemID: it.ID, QuantityChanged: 4, MovementType: "in", Reason: "compra"})
	require.NoError(t, err)

	minStock := int64(10)
	name := "Cable UTP"
	updated, err := s.items.Update(ctx, it.ID, "manager", dto.UpdateItemRequest{Name: &name, MinimumStock: &minStock})
	require.NoError(t, err)
	assert.Equal(t, "Cable UTP", updated.Name)
	assert.Equal(t, int64(4), updated.Quantity)
	assert.Equal(t, int64(1), updated.LastMovementSeq)
	assert.True(t, updated.LowStock)
	assert.Equal(t, "manager", updated.UpdatedBy)

	alerts, err := s.alerts.List(ctx, dto.AlertListQuery{ItemID: it.ID, Status: entity.AlertStatusActive})
	require.NoError(t, err)
	assert.Len(t, alerts.Alerts, 1)

	sku := other.SKU
	_, err = s.items.Update(ctx, it.ID, "manager", dto.UpdateItemRequest{SKU: &sku})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	bad := int64(-1)
	_, err = s.items.Update(ctx, it.ID, "manager", dto.UpdateItemRequest{MinimumStock: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemUseCase_ArchiveYList(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	a := createItem(t, s, "A-1", 0)
	createItem(t, s, "B-1", 2)

	list, err := s.items.List(ctx, dto.ItemListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 20, list.Page.Limit)

	low, err := s.items.List(ctx, dto.ItemListQuery{LowStock: true})
	require.NoError(t, err)
	assert.Len(t, low.Items, 2)

	require.NoError(t, s.items.Archive(ctx, a.ID, "admin"))
	_, err = s.items.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err = s.items.List(ctx, dto.ItemListQuery{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestStockUseCase_RecordYHistorial(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	it := createItem(t, s, "CAB-1", 2)

	res, err := s.stock.RecordMovement(ctx, "u7", dto.RecordMovementRequest{ItemID: it.ID, QuantityChanged: 5, MovementType: "in", Reason: "compra"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Item.Quantity)
	assert.Equal(t, "u7", res.Movement.PerformedBy)
	require.Len(t, res.Alerts, 1)
	assert.Equal(t, string(domaininv.DecisionResolveLowStock), res.Alerts[0].Decision)

	_, err = s.stock.RecordMovement(ctx, "u7", dto.RecordMovementRequest{ItemID: it.ID, QuantityChanged: 9, MovementType: "out", Reason: "venta"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	hist, err := s.stock.ListMovements(ctx, it.ID, dto.MovementListQuery{})
	require.NoError(t, err)
	require.Len(t, hist.Movements, 1)
	assert.Equal(t, "in", hist.Movements[0].MovementType)

	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	hist, err = s.stock.ListMovements(ctx, it.ID, dto.MovementListQuery{From: future})
	require.NoError(t, err)
	assert.Empty(t, hist.Movements)

	_, err = s.stock.ListMovements(ctx, it.ID, dto.MovementListQuery{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rec, err := s.stock.Reconcile(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, int64(5), rec.Projected)
}

func TestAlertUseCase_Resolve(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	it := createItem(t, s, "CAB-1", 1)

	list, err := s.alerts.List(ctx, dto.AlertListQuery{ItemID: it.ID})
	require.NoError(t, err)
	require.Len(t, list.Alerts, 1)

	resolved, err := s.alerts.Resolve(ctx, list.Alerts[0].ID, "manager")
	require.NoError(t, err)
	assert.Equal(t, entity.AlertStatusResolved, resolved.Status)
	assert.Equal(t, "manager", resolved.ResolvedBy)

	_, err = s.alerts.Resolve(ctx, list.Alerts[0].ID, "manager")
	assert.ErrorIs(t, err, domain.ErrConflict)

	active, err := s.alerts.List(ctx, dto.AlertListQuery{Status: entity.AlertStatusActive})
	require.NoError(t, err)
	assert.Empty(t, active.Alerts)
}

func TestItemUseCase_HistoryIncluyeArchivados(t *testing.T) {
	ctx := context.Background()
	s := newSuite(t)
	it := createItem(t, s, "CAB-1", 0)

	loc := "Bodega 2"
	_, err := s.items.Update(ctx, it.ID, "manager", dto.UpdateItemRequest{Location: &loc})
	require.NoError(t, err)
	require.NoError(t, s.items.Archive(ctx, it.ID, "admin"))

	h, err := s.items.History(ctx, it.ID, dto.AuditListQuery{})
	require.NoError(t, err)
	require.Len(t, h.Entries, 3)
	assert.Equal(t, []string{"create", "update", "archive"}, []string{h.Entries[0].Action, h.Entries[1].Action, h.Entries[2].Action})
	assert.Equal(t, []string{"admin", "manager", "admin"}, []string{h.Entries[0].PerformedBy, h.Entries[1].PerformedBy, h.Entries[2].PerformedBy})
	assert.Contains(t, string(h.Entries[1].After), `"location":"Bodega 2"`)
	assert.Equal(t, 20, h.Page.Limit)

	page, err := s.items.History(ctx, it.ID, dto.AuditListQuery{PageRequest: dto.PageRequest{Limit: 1, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "archive", page.Entries[0].Action)

	_, err = s.items.History(ctx, "nope", dto.AuditListQuery{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
