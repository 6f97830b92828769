package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ItemUseCase catálogo de artículos. La cantidad solo cambia vía movimientos del libro.
type ItemUseCase struct {
	repo   repository.ItemRepository
	audits repository.AuditRepository
	ledger *inventory.LedgerService
	log    zerolog.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository, audits repository.AuditRepository, ledger *inventory.LedgerService, log zerolog.Logger) *ItemUseCase {
	return &ItemUseCase{repo: repo, audits: audits, ledger: ledger, log: log.With().Str("component", "items").Logger()}
}

// Create registra un artículo con cantidad 0. La bitácora y las alertas iniciales se escriben
// en la misma tx; si algo falla el artículo no queda registrado.
func (uc *ItemUseCase) Create(ctx context.Context, userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	now := time.Now()
	item := &entity.Item{
		ID:             uuid.New().String(),
		Name:           in.Name,
		SKU:            in.SKU,
		Description:    in.Description,
		Category:       in.Category,
		Location:       in.Location,
		MinimumStock:   in.MinimumStock,
		MaximumStock:   in.MaximumStock,
		UnitPrice:      in.UnitPrice,
		SupplierID:     in.SupplierID,
		Barcode:        in.Barcode,
		ExpirationDate: in.ExpirationDate,
		CreatedBy:      userID,
		UpdatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetBySKU(ctx, item.SKU)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if existing != nil {
		uc.log.Warn().Str("sku", item.SKU).Str("existing_id", existing.ID).Msg("sku ya registrado")
		return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, item.SKU)
	}
	if _, err := uc.ledger.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, item.ID)
}

// GetByID obtiene un artículo activo.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.ledger.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Update aplica los campos presentes y reevalúa las alertas con los umbrales resultantes.
func (uc *ItemUseCase) Update(ctx context.Context, id, userID string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.ledger.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.SKU != nil && *in.SKU != item.SKU {
		other, err := uc.repo.GetBySKU(ctx, *in.SKU)
		if err != nil {
			return nil, wrapStorage(err)
		}
		if other != nil && other.ID != item.ID {
			return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, *in.SKU)
		}
		item.SKU = *in.SKU
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Location != nil {
		item.Location = *in.Location
	}
	if in.MinimumStock != nil {
		item.MinimumStock = *in.MinimumStock
	}
	if in.ClearMaximum {
		item.MaximumStock = nil
	} else if in.MaximumStock != nil {
		item.MaximumStock = in.MaximumStock
	}
	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
	}
	if in.SupplierID != nil {
		item.SupplierID = *in.SupplierID
	}
	if in.Barcode != nil {
		item.Barcode = *in.Barcode
	}
	if in.ClearExpiry {
		item.ExpirationDate = nil
	} else if in.ExpirationDate != nil {
		item.ExpirationDate = in.ExpirationDate
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.UpdatedBy = userID
	item.UpdatedAt = time.Now()
	if _, err := uc.ledger.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// Archive da de baja el artículo. Su historial sigue consultable.
func (uc *ItemUseCase) Archive(ctx context.Context, id, userID string) error {
	return uc.ledger.ArchiveItem(ctx, id, userID)
}

// List lista artículos activos con filtros y paginación.
func (uc *ItemUseCase) List(ctx context.Context, q dto.ItemListQuery) (*dto.ItemListResponse, error) {
	q.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ItemFilter{
		Category:     q.Category,
		Location:     q.Location,
		LowStockOnly: q.LowStock,
	}, q.Limit, q.Offset)
	if err != nil {
		return nil, wrapStorage(err)
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// History devuelve la bitácora de catálogo del artículo, incluida la de artículos archivados.
func (uc *ItemUseCase) History(ctx context.Context, id string, q dto.AuditListQuery) (*dto.AuditListResponse, error) {
	q.DefaultPage()
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, id)
	}
	list, err := uc.audits.ListByEntity(ctx, entity.AuditEntityItem, id, q.Limit, q.Offset)
	if err != nil {
		return nil, wrapStorage(err)
	}
	entries := make([]dto.AuditEntryResponse, 0, len(list))
	for _, e := range list {
		entries = append(entries, toAuditEntryResponse(e))
	}
	return &dto.AuditListResponse{
		ItemID:  id,
		Entries: entries,
		Page:    dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}
