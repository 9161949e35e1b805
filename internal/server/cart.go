package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/domain"
)

func sessionID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-Session-ID"))
}

type addCartItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// @Summary      Get Cart
// @Description  Get the session's cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session ID"
// @Success      200  {object}  cartdomain.Cart
// @Router       /cart [get]
func (s *Server) GetCart(c *gin.Context) {
	session := sessionID(c)
	if session == "" {
		AbortWithError(c, cartdomain.ErrInvalidSession)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": s.carts.Snapshot(session)})
}

// @Summary      Add Cart Item
// @Description  Add a catalog item to the session's cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session ID"
// @Param        request body addCartItemRequest true "Add Cart Item Request"
// @Success      200  {object}  cartdomain.Cart
// @Router       /cart/items [post]
func (s *Server) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// The line snapshot comes from the catalog, never from the payload, so a
	// client cannot set its own price.
	item, err := s.catalog.GetByCode(c.Request.Context(), strings.TrimSpace(req.ItemID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cart, err := s.carts.Add(sessionID(c), cartdomain.Line{
		ItemID:        item.Code,
		Title:         item.Title,
		UnitPrice:     item.UnitPrice,
		Currency:      item.Currency,
		Quantity:      req.Quantity,
		BillingPeriod: item.BillingPeriod,
		Trial:         item.Trial,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cart})
}

// @Summary      Remove Cart Item
// @Description  Remove a line from the session's cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string  true  "Session ID"
// @Param        itemId  path  string  true  "Item ID"
// @Success      200  {object}  cartdomain.Cart
// @Router       /cart/items/{itemId} [delete]
func (s *Server) RemoveCartItem(c *gin.Context) {
	cart, err := s.carts.Remove(sessionID(c), strings.TrimSpace(c.Param("itemId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cart})
}
