package maps

import (
	apphttp "trashtrack_backend/internal/http"
	"trashtrack_backend/platform/httpkit"
	"trashtrack_backend/platform/logger"
	"trashtrack_backend/platform/validator"

	"golang.org/x/time/rate"
)

// Module wires the maps HTTP routes.
type Module struct {
	handler *Handler
	limiter *httpkit.IPRateLimiter
}

func NewModule(lookup Lookup, val *validator.Validator, log *logger.Logger) *Module {
	svc := NewService(lookup, log)
	h := NewHandler(svc, val)
	return &Module{
		handler: h,
		limiter: httpkit.NewIPRateLimiter(rate.Limit(5), 20, log),
	}
}

func (m *Module) Name() string {
	return "maps"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/maps")
	group.Use(m.limiter.RateLimit())
	group.GET("/autocomplete", m.handler.Autocomplete)
	group.GET("/places/:placeId", m.handler.PlaceDetails)
	group.POST("/geocode", m.handler.ReverseGeocode)
}

var _ apphttp.Module = (*Module)(nil)
