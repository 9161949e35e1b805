package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List Catalog
// @Description  List purchasable service offerings
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Success      200  {object}  catalogdomain.ListResponse
// @Router       /catalog [get]
func (s *Server) ListCatalog(c *gin.Context) {
	resp, err := s.catalog.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
