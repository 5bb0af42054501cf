package handlers

import (
	"net/http"

	"darkops-lab/pkg/models"

	"github.com/gin-gonic/gin"
)

type AttackHandler struct {
	Catalog *models.Catalog
}

func NewAttackHandler(catalog *models.Catalog) *AttackHandler {
	return &AttackHandler{Catalog: catalog}
}

// List handles GET /api/attacks. The whole catalog is returned; category
// filtering is a client concern.
func (h *AttackHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalog.Attacks)
}

// Get handles GET /api/attacks/:id.
func (h *AttackHandler) Get(c *gin.Context) {
	attack, ok := h.Catalog.Get(c.Param("id"))
	if !ok {
		abortWithDetail(c, http.StatusNotFound, "Attack not found")
		return
	}
	c.JSON(http.StatusOK, attack)
}
