package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fims-backend/internal/location"
	"fims-backend/internal/models"
)

// LocationHandler resolves device fixes to addresses server-side so the
// geocoding API credential never reaches clients.
type LocationHandler struct {
	geocoder location.Geocoder
}

func NewLocationHandler(geocoder location.Geocoder) *LocationHandler {
	return &LocationHandler{
		geocoder: geocoder,
	}
}

// ReverseGeocode takes a client-reported position and returns the formatted
// address. Geocoding failure is a soft outcome: the response carries a
// warning and an empty address instead of an error status.
func (h *LocationHandler) ReverseGeocode(c *gin.Context) {
	var req models.ReverseGeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	capturer := location.NewCapturer(reportedPosition{
		pos: location.Position{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Accuracy:  req.Accuracy,
		},
	}, h.geocoder, location.DefaultOptions())

	fix, warning, err := capturer.Capture(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to capture location",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ReverseGeocodeResponse{
		Address: fix.Address,
		Warning: warning,
	})
}

// reportedPosition adapts a position already measured by the device into the
// Geolocator interface.
type reportedPosition struct {
	pos location.Position
}

func (r reportedPosition) CurrentPosition(ctx context.Context, opts location.Options) (location.Position, error) {
	if err := ctx.Err(); err != nil {
		return location.Position{}, err
	}
	return r.pos, nil
}
