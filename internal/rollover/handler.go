package rollover

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gangboard/pkg/response"
)

// Handler exposes on-demand resets for administrative use
type Handler struct {
	service *Service
	guildID string
}

// NewHandler creates a new rollover handler
func NewHandler(service *Service, guildID string) *Handler {
	return &Handler{service: service, guildID: guildID}
}

// Routes returns the router for reset endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/reset-weekly", h.ResetWeekly)
	r.Post("/reset-all", h.ResetAll)

	return r
}

// ResetWeekly handles POST /admin/reset-weekly
// @Summary      Reset weekly points
// @Description  Zero weekly counters for every member and gang; lifetime totals survive
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.APIResponse{data=Summary}
// @Router       /admin/reset-weekly [post]
func (h *Handler) ResetWeekly(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ResetWeekly(r.Context(), h.guildID)
	if err != nil {
		response.InternalError(w, "Failed to reset weekly points")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// ResetAll handles POST /admin/reset-all
// @Summary      Reset all points
// @Description  Zero every counter, lifetime totals included
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.APIResponse{data=Summary}
// @Router       /admin/reset-all [post]
func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ResetAll(r.Context(), h.guildID)
	if err != nil {
		response.InternalError(w, "Failed to reset points")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}
