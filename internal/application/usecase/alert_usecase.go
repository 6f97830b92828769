package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// AlertUseCase consulta y resolución manual de alertas.
type AlertUseCase struct {
	repo   repository.AlertRepository
	ledger *inventory.LedgerService
}

// NewAlertUseCase construye el caso de uso.
func NewAlertUseCase(repo repository.AlertRepository, ledger *inventory.LedgerService) *AlertUseCase {
	return &AlertUseCase{repo: repo, ledger: ledger}
}

// List lista alertas filtradas por estado, artículo o tipo.
func (uc *AlertUseCase) List(ctx context.Context, q dto.AlertListQuery) (*dto.AlertListResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.List(ctx, repository.AlertFilter{Status: q.Status, ItemID: q.ItemID, Type: q.Type}, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	out := &dto.AlertListResponse{
		Alerts: make([]dto.AlertResponse, 0, len(list)),
		Page:   dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}
	for _, a := range list {
		out.Alerts = append(out.Alerts, toAlertResponse(a))
	}
	return out, nil
}

// Resolve resuelve una alerta activa a nombre de userID.
func (uc *AlertUseCase) Resolve(ctx context.Context, id, userID string) (*dto.AlertResponse, error) {
	a, err := uc.ledger.ResolveAlert(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	resp := toAlertResponse(a)
	return &resp, nil
}

// wrapStorage deja pasar errores de dominio; el resto se reporta como fallo de almacenamiento.
func wrapStorage(err error) error {
	if errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrConflict) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
