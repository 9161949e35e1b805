package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	cartdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/domain"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/lifecycle"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
)

type createOrderRequest struct {
	Billing  billingRequest     `json:"billing"`
	Items    []orderItemRequest `json:"items"`
	Discount int64              `json:"discount"`
	Tax      int64              `json:"tax"`
}

type billingRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
}

type orderItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

type kickoffRequest struct {
	Description string `json:"description"`
}

// invoiceStub is a display-only projection of the order's totals. Rendering a
// real invoice document is out of scope here.
type invoiceStub struct {
	Number   string    `json:"number"`
	IssuedAt time.Time `json:"issued_at"`
	Currency string    `json:"currency"`
	Subtotal int64     `json:"subtotal"`
	Discount int64     `json:"discount"`
	Tax      int64     `json:"tax"`
	Total    int64     `json:"total"`
}

func orderIDParam(c *gin.Context) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		return 0, orderdomain.ErrInvalidOrderID
	}
	return id, nil
}

// @Summary      List Orders
// @Description  List orders, newest first
// @Tags         orders
// @Accept       json
// @Produce      json
// @Success      200  {object}  orderdomain.ListOrdersResponse
// @Router       /orders [get]
func (s *Server) ListOrders(c *gin.Context) {
	resp, err := s.orders.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Create Order
// @Description  Check out the session's cart into a pending order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session ID"
// @Param        request body createOrderRequest true "Create Order Request"
// @Success      200  {object}  orderdomain.Order
// @Router       /orders/create [post]
func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.Billing.Name) == "" {
		AbortWithError(c, newValidationError("billing.name", "required", "billing name is required"))
		return
	}

	session := sessionID(c)

	// An explicit item list replaces whatever the cart holds; otherwise the
	// session cart is checked out as-is.
	for _, item := range req.Items {
		catalogItem, err := s.catalog.GetByCode(c.Request.Context(), strings.TrimSpace(item.ItemID))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if _, err := s.carts.Add(session, cartdomain.Line{
			ItemID:        catalogItem.Code,
			Title:         catalogItem.Title,
			UnitPrice:     catalogItem.UnitPrice,
			Currency:      catalogItem.Currency,
			Quantity:      item.Quantity,
			BillingPeriod: catalogItem.BillingPeriod,
			Trial:         catalogItem.Trial,
		}); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	order, err := s.coord.Checkout(c.Request.Context(), lifecycle.CheckoutRequest{
		SessionID: session,
		Billing: orderdomain.BillingSnapshot{
			Name:    strings.TrimSpace(req.Billing.Name),
			Email:   strings.TrimSpace(req.Billing.Email),
			Address: strings.TrimSpace(req.Billing.Address),
			TaxID:   strings.TrimSpace(req.Billing.TaxID),
		},
		Discount: req.Discount,
		Tax:      req.Tax,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order": order,
		"invoice": invoiceStub{
			Number:   fmt.Sprintf("INV-%d", order.ID),
			IssuedAt: order.CreatedAt,
			Currency: order.Currency,
			Subtotal: order.Subtotal,
			Discount: order.Discount,
			Tax:      order.Tax,
			Total:    order.Total,
		},
	}})
}

// @Summary      Get Order
// @Description  Get an order with its lines and timeline
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderdomain.Order
// @Router       /orders/{id} [get]
func (s *Server) GetOrderByID(c *gin.Context) {
	resp, err := s.orders.GetByID(c.Request.Context(), orderdomain.GetOrderRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Update Order Status
// @Description  Move the order along one edge of its state machine
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Param        request body updateOrderStatusRequest true "Update Order Status Request"
// @Success      200  {object}  orderdomain.Order
// @Router       /orders/{id}/status [patch]
func (s *Server) UpdateOrderStatus(c *gin.Context) {
	id, err := orderIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	target, ok := orderdomain.ParseStatus(req.Status)
	if !ok {
		AbortWithError(c, orderdomain.ErrInvalidStatus)
		return
	}
	if target == orderdomain.StatusCancelled {
		AbortWithError(c, newValidationError("status", "use_cancel_endpoint", "cancellation requires a reason, use the cancel endpoint"))
		return
	}

	order, err := s.coord.UpdateStatus(c.Request.Context(), id, target)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

// @Summary      Cancel Order
// @Description  Cancel an order and its linked subscription
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Param        request body cancelOrderRequest true "Cancel Order Request"
// @Success      200  {object}  orderdomain.Order
// @Router       /orders/{id}/cancel [post]
func (s *Server) CancelOrder(c *gin.Context) {
	id, err := orderIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.coord.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

// @Summary      Mark Kickoff
// @Description  Record the project kickoff milestone
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Param        request body kickoffRequest true "Kickoff Request"
// @Success      200  {object}  orderdomain.Order
// @Router       /orders/{id}/kickoff [post]
func (s *Server) MarkOrderKickoff(c *gin.Context) {
	id, err := orderIDParam(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req kickoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	order, err := s.coord.MarkKickoff(c.Request.Context(), id, strings.TrimSpace(req.Description))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}
