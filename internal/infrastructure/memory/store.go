package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store almacenamiento en memoria con transacciones: las lecturas trabajan sobre copias del
// estado confirmado y las escrituras se acumulan en la tx hasta el commit, que las aplica de
// una vez. GetForUpdate toma un bloqueo de fila que se mantiene hasta el fin de la tx.
// Las escrituras sobre artículos existentes se guardan como parches por columna y se aplican
// sobre la fila confirmada al momento del commit, igual que un UPDATE de columnas.
type Store struct {
	mu        sync.RWMutex
	items     map[string]*entity.Item
	movements map[string][]*entity.StockMovement
	alerts    map[string]*entity.Alert
	audits    []*entity.AuditLog
	rows      *lock.KeyedMutex
	now       func() time.Time
}

// NewStore construye un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		items:     make(map[string]*entity.Item),
		movements: make(map[string][]*entity.StockMovement),
		alerts:    make(map[string]*entity.Alert),
		rows:      lock.NewKeyedMutex(),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj usado para CreatedAt de los movimientos.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Run ejecuta fn con repositorios atados a una transacción; commit si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.StockMovementRepository,
	alertRepo repository.AlertRepository,
	auditRepo repository.AuditRepository,
) error) error {
	t := s.begin(ctx)
	defer t.finish()
	if err := fn(&ItemRepo{s: s, t: t}, &MovementRepo{s: s, t: t}, &AlertRepo{s: s, t: t}, &AuditRepo{s: s, t: t}); err != nil {
		return err
	}
	return t.commit()
}

// Items repositorio de artículos fuera de transacción (cada escritura confirma sola).
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Movements repositorio del libro fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Alerts repositorio de alertas fuera de transacción.
func (s *Store) Alerts() *AlertRepo { return &AlertRepo{s: s} }

// Audits bitácora de catálogo fuera de transacción.
func (s *Store) Audits() *AuditRepo { return &AuditRepo{s: s} }

// autocommit ejecuta fn en tx si existe; si no, abre una tx efímera.
func (s *Store) autocommit(ctx context.Context, t *tx, fn func(t *tx) error) error {
	if t != nil {
		return fn(t)
	}
	t = s.begin(ctx)
	defer t.finish()
	if err := fn(t); err != nil {
		return err
	}
	return t.commit()
}

// itemPatch escritura de columnas sobre un artículo ya existente.
type itemPatch func(it *entity.Item)

// tx escrituras pendientes de una transacción. items es la vista de la tx; para artículos que
// no se crearon en ella, lo que se confirma son los parches, no la vista.
type tx struct {
	s         *Store
	ctx       context.Context
	items     map[string]*entity.Item
	created   map[string]bool
	patches   map[string][]itemPatch
	movements map[string][]*entity.StockMovement
	alerts    map[string]*entity.Alert
	audits    []*entity.AuditLog
	held      map[string]func()
	done      bool
}

func (s *Store) begin(ctx context.Context) *tx {
	return &tx{
		s:         s,
		ctx:       ctx,
		items:     make(map[string]*entity.Item),
		created:   make(map[string]bool),
		patches:   make(map[string][]itemPatch),
		movements: make(map[string][]*entity.StockMovement),
		alerts:    make(map[string]*entity.Alert),
		held:      make(map[string]func()),
	}
}

// patchItem aplica patch a la vista de la tx y lo deja pendiente para el commit.
func (t *tx) patchItem(id string, patch itemPatch) error {
	cur := t.getItem(id)
	if cur == nil {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, id)
	}
	patch(cur)
	t.items[id] = cur
	if !t.created[id] {
		t.patches[id] = append(t.patches[id], patch)
	}
	return nil
}

// lockRow bloquea la fila del artículo hasta finish. Reentrante dentro de la misma tx.
func (t *tx) lockRow(id string) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	unlock, err := t.s.rows.Lock(t.ctx, id)
	if err != nil {
		return fmt.Errorf("bloquear fila %s: %w", id, err)
	}
	t.held[id] = unlock
	return nil
}

// commit valida las restricciones contra el estado confirmado y aplica todo o nada.
func (t *tx) commit() error {
	if t.done {
		return fmt.Errorf("commit transaction: transacción finalizada")
	}
	if err := t.ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	final := make(map[string]*entity.Item, len(t.items))
	for id, it := range t.items {
		if t.created[id] {
			final[id] = it
			continue
		}
		base := cloneItem(s.items[id])
		if base == nil {
			return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, id)
		}
		for _, patch := range t.patches[id] {
			patch(base)
		}
		final[id] = base
	}
	for id, it := range final {
		for otherID, other := range s.items {
			if _, staged := final[otherID]; staged {
				other = final[otherID]
			}
			if otherID != id && other.SKU == it.SKU {
				return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, it.SKU)
			}
		}
	}
	for itemID, staged := range t.movements {
		var last int64
		if committed := s.movements[itemID]; len(committed) > 0 {
			last = committed[len(committed)-1].Sequence
		}
		if staged[0].Sequence != last+1 {
			return fmt.Errorf("%w: secuencia %d del artículo %s ya usada", domain.ErrConflict, staged[0].Sequence, itemID)
		}
	}
	for id, a := range t.alerts {
		if !a.IsActive() {
			continue
		}
		for otherID, other := range s.alerts {
			if otherID != id && other.IsActive() && other.ItemID == a.ItemID && other.Type == a.Type {
				return fmt.Errorf("%w: alerta %s activa para %s", domain.ErrDuplicate, a.Type, a.ItemID)
			}
		}
	}

	for id, it := range final {
		s.items[id] = it
	}
	for itemID, staged := range t.movements {
		s.movements[itemID] = append(s.movements[itemID], staged...)
	}
	for id, a := range t.alerts {
		s.alerts[id] = a
	}
	s.audits = append(s.audits, t.audits...)
	t.done = true
	return nil
}

// finish descarta lo pendiente (si no hubo commit) y libera los bloqueos de fila.
func (t *tx) finish() {
	t.done = true
	for id, unlock := range t.held {
		unlock()
		delete(t.held, id)
	}
}

func cloneItem(it *entity.Item) *entity.Item {
	if it == nil {
		return nil
	}
	c := *it
	c.MaximumStock = cloneInt(it.MaximumStock)
	c.ExpirationDate = cloneTime(it.ExpirationDate)
	c.ArchivedAt = cloneTime(it.ArchivedAt)
	c.LastMovementAt = cloneTime(it.LastMovementAt)
	return &c
}

func cloneAlert(a *entity.Alert) *entity.Alert {
	if a == nil {
		return nil
	}
	c := *a
	c.ResolvedAt = cloneTime(a.ResolvedAt)
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
