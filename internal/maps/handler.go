package maps

import (
	"net/http"
	"strings"

	"trashtrack_backend/platform/httpkit"
	"trashtrack_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler exposes the maps endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Autocomplete handles GET /api/v1/maps/autocomplete?q=...
func (h *Handler) Autocomplete(c *gin.Context) {
	var req AutocompleteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required (min 3 chars)", nil)
		return
	}

	httpkit.OK(c, h.svc.Autocomplete(c.Request.Context(), req.Query))
}

// PlaceDetails handles GET /api/v1/maps/places/:placeId
func (h *Handler) PlaceDetails(c *gin.Context) {
	placeID := strings.TrimSpace(c.Param("placeId"))
	if placeID == "" {
		httpkit.Error(c, http.StatusBadRequest, "placeId is required", nil)
		return
	}

	details, err := h.svc.PlaceDetails(c.Request.Context(), placeID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, details)
}

// ReverseGeocode handles POST /api/v1/maps/geocode
func (h *Handler) ReverseGeocode(c *gin.Context) {
	var req GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid coordinates", validator.FieldErrors(err))
		return
	}

	address, err := h.svc.ReverseGeocode(c.Request.Context(), *req.Lat, *req.Lon)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, GeocodeResponse{Address: address})
}
