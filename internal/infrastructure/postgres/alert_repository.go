package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

const alertColumns = `id, item_id, alert_type, message, status, created_at, resolved_at, resolved_by`

// AlertRepo implementación de AlertRepository sobre PostgreSQL (usable con pool o tx).
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador de alertas. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

func scanAlert(row pgx.Row) (*entity.Alert, error) {
	var a entity.Alert
	if err := row.Scan(&a.ID, &a.ItemID, &a.Type, &a.Message, &a.Status, &a.CreatedAt, &a.ResolvedAt, &a.ResolvedBy); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserta la alerta. El índice parcial alerts_one_active_idx impide dos activas del mismo tipo.
func (r *AlertRepo) Create(ctx context.Context, a *entity.Alert) error {
	query := `
		INSERT INTO alerts (id, item_id, alert_type, message, status, created_at, resolved_at, resolved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, a.ID, a.ItemID, a.Type, a.Message, a.Status, a.CreatedAt, a.ResolvedAt, a.ResolvedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: alerta %s activa para %s", domain.ErrDuplicate, a.Type, a.ItemID)
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// GetByID obtiene una alerta por ID.
func (r *AlertRepo) GetByID(ctx context.Context, id string) (*entity.Alert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// GetActive devuelve la alerta activa de (itemID, alertType) o nil.
func (r *AlertRepo) GetActive(ctx context.Context, itemID, alertType string) (*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE item_id = $1 AND alert_type = $2 AND status = 'active'`
	a, err := scanAlert(r.q.QueryRow(ctx, query, itemID, alertType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active alert: %w", err)
	}
	return a, nil
}

// Resolve marca la alerta como resuelta; ErrNotFound si no existe, ErrConflict si no estaba activa.
func (r *AlertRepo) Resolve(ctx context.Context, id, by string, at time.Time) error {
	query := `
		UPDATE alerts SET status = 'resolved', resolved_at = $3, resolved_by = $2
		WHERE id = $1 AND status = 'active'`
	tag, err := r.q.Exec(ctx, query, id, by, at)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: alerta %s", domain.ErrNotFound, id)
	}
	return fmt.Errorf("%w: alerta %s no está activa", domain.ErrConflict, id)
}

// List lista alertas de la más reciente a la más antigua.
func (r *AlertRepo) List(ctx context.Context, filter repository.AlertFilter, limit, offset int) ([]*entity.Alert, error) {
	var w whereBuilder
	if filter.Status != "" {
		w.add("status = $%d", filter.Status)
	}
	if filter.ItemID != "" {
		w.add("item_id = $%d", filter.ItemID)
	}
	if filter.Type != "" {
		w.add("alert_type = $%d", filter.Type)
	}
	query := `SELECT ` + alertColumns + ` FROM alerts` + w.sql() + ` ORDER BY created_at DESC, id`
	query += w.page(limit, offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	out := []*entity.Alert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return out, nil
}
