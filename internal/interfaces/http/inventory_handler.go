package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
)

// MovementService operaciones transaccionales de movimientos (lo implementa *inventory.RegisterMovementUseCase).
type MovementService interface {
	RegisterAdjustment(ctx context.Context, in inventory.AdjustmentInput) (*inventory.MovementResult, error)
	ApproveTransfer(ctx context.Context, in inventory.TransferInput) (*inventory.MovementResult, error)
	FinalizeExchange(ctx context.Context, in inventory.ExchangeInput) (*inventory.MovementResult, error)
	ApprovePurchaseInvoice(ctx context.Context, in inventory.PurchaseInvoiceInput) (*inventory.MovementResult, error)
	RevertPurchaseInvoice(ctx context.Context, invoiceID, responsibleID string) (*inventory.MovementResult, error)
}

// InventoryHandler maneja las peticiones HTTP de movimientos de inventario.
type InventoryHandler struct {
	uc MovementService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc MovementService) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste de inventario
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "operation IN|OUT, deposit_id, items"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input := inventory.AdjustmentInput{
		Operation:         in.Operation,
		Reason:            in.Reason,
		DepositID:         in.DepositID,
		Items:             toMovementLines(in.Items),
		ResponsibleID:     responsible(c, in.ResponsibleID),
		ReferenceDocument: in.ReferenceDocument,
		Notes:             in.Notes,
	}
	if in.MovementDate != nil {
		input.MovementDate = *in.MovementDate
	}
	res, err := h.uc.RegisterAdjustment(c.Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResult(res))
}

// ApproveTransfer godoc
// @Summary      Aprobar traslado entre depósitos
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "origen, destino, items"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) ApproveTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.ApproveTransfer(c.Context(), inventory.TransferInput{
		OriginDepositID:      in.OriginDepositID,
		DestinationDepositID: in.DestinationDepositID,
		Items:                toMovementLines(in.Items),
		ResponsibleID:        responsible(c, in.ResponsibleID),
		ReferenceDocument:    in.ReferenceDocument,
		Notes:                in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResult(res))
}

// FinalizeExchange godoc
// @Summary      Finalizar cambio de mercadería
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del cambio"
// @Param        body  body  dto.ExchangeRequest  true  "returned_items, taken_items"
// @Success      201   {object}  dto.MovementResultResponse
// @Router       /api/inventory/exchanges/{id}/finalize [post]
func (h *InventoryHandler) FinalizeExchange(c *fiber.Ctx) error {
	var in dto.ExchangeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.FinalizeExchange(c.Context(), inventory.ExchangeInput{
		ExchangeID:    c.Params("id"),
		DepositID:     in.DepositID,
		ReturnedItems: toMovementLines(in.ReturnedItems),
		TakenItems:    toMovementLines(in.TakenItems),
		ResponsibleID: responsible(c, in.ResponsibleID),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResult(res))
}

// ApprovePurchaseInvoice godoc
// @Summary      Aprobar nota de compra (idempotente)
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la nota"
// @Param        body  body  dto.PurchaseInvoiceRequest  true  "deposit_id, items"
// @Success      201   {object}  dto.MovementResultResponse
// @Success      200   {object}  dto.MovementResultResponse  "ya aplicada"
// @Router       /api/inventory/purchase-invoices/{id}/approve [post]
func (h *InventoryHandler) ApprovePurchaseInvoice(c *fiber.Ctx) error {
	var in dto.PurchaseInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.uc.ApprovePurchaseInvoice(c.Context(), inventory.PurchaseInvoiceInput{
		InvoiceID:     c.Params("id"),
		DepositID:     in.DepositID,
		Operation:     in.Operation,
		Items:         toMovementLines(in.Items),
		ResponsibleID: responsible(c, in.ResponsibleID),
	})
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if res.AlreadyApplied {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(toMovementResult(res))
}

// RevertPurchaseInvoice godoc
// @Summary      Revertir stock de una nota cancelada
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID de la nota"
// @Success      200  {object}  dto.MovementResultResponse
// @Router       /api/inventory/purchase-invoices/{id}/revert [post]
func (h *InventoryHandler) RevertPurchaseInvoice(c *fiber.Ctx) error {
	var in dto.RevertPurchaseInvoiceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	res, err := h.uc.RevertPurchaseInvoice(c.Context(), c.Params("id"), responsible(c, in.ResponsibleID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementResult(res))
}

// responsible prioriza el responsable del cuerpo sobre el del header.
func responsible(c *fiber.Ctx, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return GetUserID(c)
}
