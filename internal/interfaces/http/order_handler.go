package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-orders/internal/application/dto"
	"github.com/jhoicas/warehouse-orders/internal/application/order"
	"github.com/jhoicas/warehouse-orders/internal/domain"
	"github.com/jhoicas/warehouse-orders/internal/domain/entity"
	domainorder "github.com/jhoicas/warehouse-orders/internal/domain/order"
	"github.com/jhoicas/warehouse-orders/pkg/logger"
)

// OrderHandler maneja las peticiones HTTP de pedidos (protegido).
// Un usuario con rol customer solo ve y cancela sus propios pedidos.
type OrderHandler struct {
	svc   *order.Service
	slips *order.PackingSlipUseCase
	log   *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(svc *order.Service, slips *order.PackingSlipUseCase, log *logger.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, slips: slips, log: log}
}

// Create godoc
// @Summary      Crear pedido (reserva stock de todas las líneas o de ninguna)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Líneas y despacho"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	userID := GetUserID(c)
	customerID := strings.TrimSpace(in.CustomerID)
	if GetRole(c) == entity.RoleCustomer || customerID == "" {
		if customerID != "" && customerID != userID {
			return writeError(c, h.log, domain.ErrForbidden)
		}
		customerID = userID
	}

	items := make([]order.ItemInput, len(in.Items))
	for i, it := range in.Items {
		items[i] = order.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	var shipping *entity.ShippingInfo
	if in.Shipping != nil {
		shipping = &entity.ShippingInfo{
			Address:    in.Shipping.Address,
			City:       in.Shipping.City,
			PostalCode: in.Shipping.PostalCode,
			Country:    in.Shipping.Country,
			Phone:      in.Shipping.Phone,
		}
	}

	o, err := h.svc.CreateOrder(c.UserContext(), order.CreateOrderInput{
		CustomerID: customerID,
		Items:      items,
		Shipping:   shipping,
		Notes:      in.Notes,
		ActorID:    userID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order.ToResponse(o))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        customer_id  query  string  false  "Cliente (ignorado para rol customer)"
// @Param        status       query  string  false  "Estado"
// @Param        limit        query  int     false  "Límite"  default(20)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.Normalize()

	filter := order.ListFilter{CustomerID: c.Query("customer_id"), Limit: page.Limit, Offset: page.Offset}
	if GetRole(c) == entity.RoleCustomer {
		filter.CustomerID = GetUserID(c)
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domainorder.ParseStatus(raw)
		if err != nil {
			return writeError(c, h.log, err)
		}
		filter.Status = status
	}

	list, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.OrderResponse, len(list))
	for i, o := range list {
		items[i] = order.ToResponse(o)
	}
	return c.JSON(dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// GetByID godoc
// @Summary      Obtener pedido por ID
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.visibleOrder(c, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(order.ToResponse(o))
}

// GetByNumber godoc
// @Summary      Obtener pedido por número
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        number  path  string  true  "Número ORD-yyyyMMdd-NNNNNN"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/number/{number} [get]
func (h *OrderHandler) GetByNumber(c *fiber.Ctx) error {
	o, err := h.svc.GetByNumber(c.UserContext(), c.Params("number"))
	if err == nil && !h.canSee(c, o) {
		err = domain.NotFound("pedido", c.Params("number"))
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(order.ToResponse(o))
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Estado destino y notas"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	raw := strings.ToUpper(strings.TrimSpace(in.Status))
	if raw == "" {
		return writeError(c, h.log, domain.Invalid("status es obligatorio"))
	}
	// Un estado desconocido llega tal cual a la máquina de estados y responde INVALID_TRANSITION.
	o, err := h.svc.UpdateStatus(c.UserContext(), c.Params("id"), entity.OrderStatus(raw), GetUserID(c), in.Notes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(order.ToResponse(o))
}

// Cancel godoc
// @Summary      Cancelar pedido (devuelve el stock una sola vez)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.CancelOrderRequest  false  "Motivo"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	id := c.Params("id")
	if _, err := h.visibleOrder(c, id); err != nil {
		return writeError(c, h.log, err)
	}
	o, err := h.svc.CancelOrder(c.UserContext(), id, in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(order.ToResponse(o))
}

// Transactions godoc
// @Summary      Movimientos de inventario del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}   dto.InventoryTransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/transactions [get]
func (h *OrderHandler) Transactions(c *fiber.Ctx) error {
	txs, err := h.svc.ListTransactions(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(order.ToTransactionResponses(txs))
}

// PackingSlip godoc
// @Summary      Guía de despacho en PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/packing-slip [get]
func (h *OrderHandler) PackingSlip(c *fiber.Ctx) error {
	doc, filename, err := h.slips.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}

// visibleOrder carga el pedido y oculta los ajenos a un customer como NOT_FOUND.
func (h *OrderHandler) visibleOrder(c *fiber.Ctx, id string) (*entity.Order, error) {
	o, err := h.svc.GetByID(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if !h.canSee(c, o) {
		return nil, domain.NotFound("pedido", id)
	}
	return o, nil
}

func (h *OrderHandler) canSee(c *fiber.Ctx, o *entity.Order) bool {
	return GetRole(c) != entity.RoleCustomer || o.CustomerID == GetUserID(c)
}
