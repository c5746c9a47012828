package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
	"github.com/workpulse-hq/attendance-backend-go/internal/handler/http/response"
)

type ZoneHandler interface {
	List(w http.ResponseWriter, r *http.Request)
}

type zoneHandlerImpl struct {
	zoneDir zone.ZoneDirectory
}

func NewZoneHandler(zoneDir zone.ZoneDirectory) ZoneHandler {
	return &zoneHandlerImpl{zoneDir: zoneDir}
}

// List returns the active geofence zones of the caller's company.
func (h *zoneHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	_, claims, _ := jwtauth.FromContext(r.Context())
	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	zones, err := h.zoneDir.ListActiveZones(r.Context(), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, zones)
}
