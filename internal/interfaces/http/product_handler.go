package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/application/inventory"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
)

// StockService operaciones del ledger por producto (lo implementa *inventory.StockUseCase).
type StockService interface {
	AdjustStock(ctx context.Context, productID, depositID string, delta decimal.Decimal, cascade bool) (inventory.AdjustResult, error)
	SetDepositQuantity(ctx context.Context, productID, depositID string, value decimal.Decimal) (bool, error)
	GetQuantity(ctx context.Context, productID, depositID string) (decimal.Decimal, error)
	RecomputeFractionalProduct(ctx context.Context, productID string) (inventory.RecomputeResult, error)
	RecomputeAll(ctx context.Context) ([]inventory.RecomputeResult, error)
	ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}

// FractionService configuración de fraccionamiento (lo implementa *inventory.ConfigureFractionsUseCase).
type FractionService interface {
	Configure(ctx context.Context, parentID string, active bool, edges []inventory.FractionEdgeInput) (inventory.RecomputeResult, error)
}

// ProductHandler maneja stock por depósito y fraccionamiento de productos.
type ProductHandler struct {
	stock     StockService
	fractions FractionService
}

// NewProductHandler construye el handler.
func NewProductHandler(stock StockService, fractions FractionService) *ProductHandler {
	return &ProductHandler{stock: stock, fractions: fractions}
}

// AdjustStock godoc
// @Summary      Ajuste puntual de stock (cascada por defecto)
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.StockAdjustRequest  true  "deposit_id, delta, cascade"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/products/{id}/stock/adjust [post]
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	cascade := true
	if in.Cascade != nil {
		cascade = *in.Cascade
	}
	res, err := h.stock.AdjustStock(c.Context(), c.Params("id"), in.DepositID, in.Delta, cascade)
	if err != nil {
		return writeError(c, err)
	}
	adjusted := res.Adjusted
	if adjusted == nil {
		adjusted = []string{}
	}
	return c.JSON(dto.AdjustStockResponse{Updated: res.Updated, Adjusted: adjusted, Warnings: res.Warnings})
}

// GetQuantity godoc
// @Summary      Cantidad del producto en un depósito
// @Tags         products
// @Produce      json
// @Param        id          path  string  true  "ID del producto"
// @Param        deposit_id  path  string  true  "ID del depósito"
// @Success      200  {object}  dto.QuantityResponse
// @Router       /api/products/{id}/deposits/{deposit_id}/quantity [get]
func (h *ProductHandler) GetQuantity(c *fiber.Ctx) error {
	productID, depositID := c.Params("id"), c.Params("deposit_id")
	qty, err := h.stock.GetQuantity(c.Context(), productID, depositID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.QuantityResponse{ProductID: productID, DepositID: depositID, Quantity: qty})
}

// SetQuantity godoc
// @Summary      Fijar cantidad absoluta (conteo de inventario)
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id          path  string                  true  "ID del producto"
// @Param        deposit_id  path  string                  true  "ID del depósito"
// @Param        body        body  dto.SetQuantityRequest  true  "quantity"
// @Success      200  {object}  dto.QuantityResponse
// @Router       /api/products/{id}/deposits/{deposit_id}/quantity [put]
func (h *ProductHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	productID, depositID := c.Params("id"), c.Params("deposit_id")
	changed, err := h.stock.SetDepositQuantity(c.Context(), productID, depositID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.QuantityResponse{ProductID: productID, DepositID: depositID, Quantity: in.Quantity, Changed: &changed})
}

// ConfigureFractions godoc
// @Summary      Configurar fraccionamiento del producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID del producto padre"
// @Param        body  body  dto.ConfigureFractionsRequest  true  "active, items"
// @Success      200  {object}  dto.RecomputeResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/fractions [put]
func (h *ProductHandler) ConfigureFractions(c *fiber.Ctx) error {
	var in dto.ConfigureFractionsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	edges := make([]inventory.FractionEdgeInput, 0, len(in.Items))
	for _, e := range in.Items {
		edges = append(edges, inventory.FractionEdgeInput{
			ChildProductID:   e.ChildProductID,
			OriginQuantity:   e.OriginQuantity,
			FractionQuantity: e.FractionQuantity,
		})
	}
	res, err := h.fractions.Configure(c.Context(), c.Params("id"), in.Active, edges)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecomputeResponse(res))
}

// Recompute godoc
// @Summary      Recalcular campos derivados de un producto fraccionado
// @Tags         products
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.RecomputeResponse
// @Router       /api/products/{id}/fractions/recompute [post]
func (h *ProductHandler) Recompute(c *fiber.Ctx) error {
	res, err := h.stock.RecomputeFractionalProduct(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecomputeResponse(res))
}

// RecomputeAll godoc
// @Summary      Resincronizar todos los productos fraccionados
// @Tags         products
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/products/fractions/recompute [post]
func (h *ProductHandler) RecomputeAll(c *fiber.Ctx) error {
	results, err := h.stock.RecomputeAll(c.Context())
	out := make([]dto.RecomputeResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toRecomputeResponse(r))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"total":   len(out),
			"results": out,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "results": out})
}

// ListMovements godoc
// @Summary      Historial de movimientos del producto
// @Tags         products
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "Por defecto 20, máximo 100"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/products/{id}/movements [get]
func (h *ProductHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return invalidBody(c)
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return invalidBody(c)
	}
	list, err := h.stock.ListMovements(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]*dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	})
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
