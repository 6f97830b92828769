package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación de AuditRepository sobre PostgreSQL (usable con pool o tx).
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador de la bitácora.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada. Before/After nil se guardan como NULL.
func (r *AuditRepo) Create(ctx context.Context, entry *entity.AuditLog) error {
	query := `
		INSERT INTO audit_log (id, entity_type, entity_id, action, performed_by, before_data, after_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action, entry.PerformedBy,
		nullJSON(entry.Before), nullJSON(entry.After), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByEntity lista las entradas de una entidad en orden cronológico.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*entity.AuditLog, error) {
	var w whereBuilder
	w.add("entity_type = $%d", entityType)
	w.add("entity_id = $%d", entityID)
	query := `SELECT id, entity_type, entity_id, action, performed_by, before_data, after_data, created_at
		FROM audit_log` + w.sql() + ` ORDER BY created_at, id`
	query += w.page(limit, offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	defer rows.Close()

	out := []*entity.AuditLog{}
	for rows.Next() {
		var (
			e             entity.AuditLog
			before, after []byte
		)
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.PerformedBy, &before, &after, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Before, e.After = before, after
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	return out, nil
}

// nullJSON envía NULL en lugar de un documento vacío.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
