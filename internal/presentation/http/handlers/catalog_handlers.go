package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/widgets"
)

// CatalogHandlers exposes the widget catalog to the palette
type CatalogHandlers struct {
	catalog *widgets.Catalog
}

// NewCatalogHandlers creates catalog handlers
func NewCatalogHandlers(catalog *widgets.Catalog) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// GetCatalog handles GET /api/v1/catalog
func (h *CatalogHandlers) GetCatalog(c *gin.Context) {
	defs := make(map[string]*widgets.Definition)
	for _, typ := range h.catalog.Types() {
		def, _ := h.catalog.Get(typ)
		defs[typ] = def
	}
	c.JSON(http.StatusOK, gin.H{"palette": h.catalog.Palette(), "widgets": defs})
}
