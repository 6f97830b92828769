package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación en memoria de AuditRepository.
type AuditRepo struct {
	s *Store
	t *tx
}

// Create agrega la entrada a la bitácora.
func (r *AuditRepo) Create(ctx context.Context, entry *entity.AuditLog) error {
	return r.s.autocommit(ctx, r.t, func(t *tx) error {
		t.audits = append(t.audits, cloneAudit(entry))
		return nil
	})
}

// ListByEntity lista las entradas de la entidad en orden cronológico (incluye las de la tx).
func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	err := r.s.autocommit(ctx, r.t, func(t *tx) error {
		t.s.mu.RLock()
		all := append(append([]*entity.AuditLog{}, t.s.audits...), t.audits...)
		t.s.mu.RUnlock()
		for _, e := range all {
			if e.EntityType == entityType && e.EntityID == entityID {
				out = append(out, cloneAudit(e))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func cloneAudit(e *entity.AuditLog) *entity.AuditLog {
	c := *e
	c.Before = append([]byte(nil), e.Before...)
	c.After = append([]byte(nil), e.After...)
	return &c
}
