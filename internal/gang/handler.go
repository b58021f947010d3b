package gang

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gangboard/pkg/response"
)

// Handler handles HTTP requests for gang operations
type Handler struct {
	service *Service
	guildID string
}

// NewHandler creates a new gang handler
func NewHandler(service *Service, guildID string) *Handler {
	return &Handler{service: service, guildID: guildID}
}

// Routes returns the router for gang endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{gangId}", h.GetByID)

	return r
}

// List handles GET /gangs
// @Summary      List gangs
// @Description  Get all gangs ordered by combined score, highest first
// @Tags         gangs
// @Produce      json
// @Param        weekly query bool false "Order by weekly score instead of lifetime"
// @Success      200 {object} response.APIResponse{data=[]GangResponse}
// @Router       /gangs [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	weekly := r.URL.Query().Get("weekly") == "true"

	gangs, err := h.service.List(r.Context(), h.guildID, weekly)
	if err != nil {
		response.InternalError(w, "Failed to list gangs")
		return
	}

	gangResponses := make([]*GangResponse, len(gangs))
	for i, g := range gangs {
		gangResponses[i] = g.ToResponse()
	}

	response.JSON(w, http.StatusOK, gangResponses)
}

// GetByID handles GET /gangs/{gangId}
// @Summary      Get gang
// @Description  Get a gang with its point breakdown and cached member totals
// @Tags         gangs
// @Produce      json
// @Param        gangId path string true "Gang ID"
// @Success      200 {object} response.APIResponse{data=GangResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /gangs/{gangId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	gangID := chi.URLParam(r, "gangId")

	g, err := h.service.GetByGangID(r.Context(), h.guildID, gangID)
	if err != nil {
		if errors.Is(err, ErrGangNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get gang")
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}
