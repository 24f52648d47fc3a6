package api

import (
	"net/http"
	"strconv"

	"github.com/Fresh-Industries/pantrypal/internal/handler/httperr"
	"github.com/Fresh-Industries/pantrypal/internal/infra"
	"github.com/Fresh-Industries/pantrypal/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog queries.CatalogQueries
}

func NewCatalogHandler(catalog queries.CatalogQueries) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// @Summary List products
// @Description Search the catalog with live availability
// @Tags catalog
// @Produce json
// @Param q query string false "Search term"
// @Param limit query int false "Max results"
// @Success 200 {array} queries.ProductView
// @Router /api/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	products, err := h.catalog.List(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		abortCommandError(c, err)
		return
	}
	if products == nil {
		products = []*queries.ProductView{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// @Summary Get product
// @Tags catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} queries.ProductView
// @Failure 404 {object} httperr.Response
// @Router /api/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "PRODUCT_NOT_FOUND", "product not found")
			return
		}
		abortCommandError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
