package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fims-backend/internal/models"
	"fims-backend/internal/supabase"
)

type CategoriesHandler struct {
	client *supabase.Client
}

func NewCategoriesHandler(client *supabase.Client) *CategoriesHandler {
	return &CategoriesHandler{
		client: client,
	}
}

// List returns the fixed inspection-type catalog.
func (h *CategoriesHandler) List(c *gin.Context) {
	categories, err := h.client.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list categories",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.CategoryListResponse{Categories: categories})
}
