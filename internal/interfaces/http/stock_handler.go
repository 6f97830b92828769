package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
)

// StockHandler maneja los movimientos del libro de stock (protegido).
type StockHandler struct {
	uc *usecase.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *usecase.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Valida, agrega el movimiento al libro, actualiza la cantidad y evalúa alertas en una sola transacción.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "item_id, quantity_changed (> 0), movement_type (in|out), reason"
// @Success      201   {object}  dto.DataResponse[dto.RecordMovementResponse]
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.RecordMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse[*dto.RecordMovementResponse]{Data: out})
}

// ListMovements godoc
// @Summary      Historial de movimientos de un artículo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del artículo"
// @Param        from  query  string  false  "Desde (RFC3339, inclusive)"
// @Param        to    query  string  false  "Hasta (RFC3339, inclusive)"
// @Success      200   {object}  dto.DataResponse[dto.MovementListResponse]
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.ListMovements(c.UserContext(), c.Params("id"), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DataResponse[*dto.MovementListResponse]{Data: out})
}

// Reconcile godoc
// @Summary      Conciliar cantidad con el libro
// @Description  Reproduce el historial y lo compara con la cantidad cacheada. No corrige diferencias.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.DataResponse[dto.ReconcileResponse]
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.uc.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.DataResponse[*dto.ReconcileResponse]{Data: out})
}
