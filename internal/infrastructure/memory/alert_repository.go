package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación en memoria de AlertRepository.
type AlertRepo struct {
	s *Store
	t *tx
}

func (t *tx) allAlerts() []*entity.Alert {
	t.s.mu.RLock()
	out := make([]*entity.Alert, 0, len(t.s.alerts)+len(t.alerts))
	for id, a := range t.s.alerts {
		if _, staged := t.alerts[id]; !staged {
			out = append(out, cloneAlert(a))
		}
	}
	t.s.mu.RUnlock()
	for _, a := range t.alerts {
		out = append(out, cloneAlert(a))
	}
	return out
}

func (t *tx) getAlert(id string) *entity.Alert {
	if a, ok := t.alerts[id]; ok {
		return cloneAlert(a)
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	return cloneAlert(t.s.alerts[id])
}

// Create inserta la alerta; ErrDuplicate si ya hay una activa del mismo tipo.
func (r *AlertRepo) Create(ctx context.Context, alert *entity.Alert) error {
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		for _, other := range t.allAlerts() {
			if other.IsActive() && other.ItemID == alert.ItemID && other.Type == alert.Type {
				return fmt.Errorf("%w: alerta %s activa para %s", domain.ErrDuplicate, alert.Type, alert.ItemID)
			}
		}
		t.alerts[alert.ID] = cloneAlert(alert)
		return nil
	})
}

// GetByID obtiene una alerta (nil si no existe).
func (r *AlertRepo) GetByID(ctx context.Context, id string) (*entity.Alert, error) {
	var out *entity.Alert
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		out = t.getAlert(id)
		return nil
	})
	return out, err
}

// GetActive devuelve la alerta activa de (itemID, alertType) o nil.
func (r *AlertRepo) GetActive(ctx context.Context, itemID, alertType string) (*entity.Alert, error) {
	var out *entity.Alert
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		for _, a := range t.allAlerts() {
			if a.IsActive() && a.ItemID == itemID && a.Type == alertType {
				out = a
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Resolve marca la alerta como resuelta; ErrConflict si no estaba activa.
func (r *AlertRepo) Resolve(ctx context.Context, id, by string, at time.Time) error {
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		a := t.getAlert(id)
		if a == nil {
			return fmt.Errorf("%w: alerta %s", domain.ErrNotFound, id)
		}
		if !a.IsActive() {
			return fmt.Errorf("%w: alerta %s no está activa", domain.ErrConflict, id)
		}
		resolved := at
		a.Status = entity.AlertStatusResolved
		a.ResolvedAt = &resolved
		a.ResolvedBy = by
		t.alerts[id] = a
		return nil
	})
}

// List lista alertas de la más reciente a la más antigua.
func (r *AlertRepo) List(ctx context.Context, filter repository.AlertFilter, limit, offset int) ([]*entity.Alert, error) {
	var out []*entity.Alert
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		for _, a := range t.allAlerts() {
			if filter.Status != "" && a.Status != filter.Status {
				continue
			}
			if filter.ItemID != "" && a.ItemID != filter.ItemID {
				continue
			}
			if filter.Type != "" && a.Type != filter.Type {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, offset), nil
}
