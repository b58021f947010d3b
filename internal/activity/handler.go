package activity

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"gangboard/pkg/response"
)

// Common errors
var (
	ErrInvalidRange = errors.New("invalid time range")
)

// Handler exposes the read-only audit feed consumed by external exporters
type Handler struct {
	repo    *Repository
	guildID string
}

// NewHandler creates a new activity log handler
func NewHandler(repo *Repository, guildID string) *Handler {
	return &Handler{repo: repo, guildID: guildID}
}

// Routes returns the router for activity log endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}

// List handles GET /activity
// @Summary      Query the activity log
// @Description  Audit entries for a time range, newest first; optionally narrowed to one target
// @Tags         activity
// @Produce      json
// @Param        from query string false "Range start (RFC 3339), defaults to 7 days ago"
// @Param        to query string false "Range end (RFC 3339), defaults to now"
// @Param        target_id query string false "Member or gang ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(50)
// @Success      200 {object} response.APIResponse{data=[]LogEntry}
// @Failure      400 {object} response.APIResponse
// @Router       /activity [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -7)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, "Invalid 'from' timestamp")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(w, "Invalid 'to' timestamp")
			return
		}
		to = parsed
	}
	if !from.Before(to) {
		response.BadRequest(w, ErrInvalidRange.Error())
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = 50
	}

	entries, err := h.repo.ListByRange(r.Context(), h.guildID, from, to, r.URL.Query().Get("target_id"), perPage, (page-1)*perPage)
	if err != nil {
		response.InternalError(w, "Failed to query activity log")
		return
	}

	response.JSON(w, http.StatusOK, entries)
}
