package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fims-backend/internal/models"
)

// HealthHandler reports service liveness. No auth.
func HealthHandler(c *gin.Context) {
	response := models.HealthResponse{
		Status: "ok",
	}
	c.JSON(http.StatusOK, response)
}
