package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gangboard/internal/gang"
	"gangboard/internal/member"
	"gangboard/pkg/response"
)

// Handler handles HTTP requests for point awards
type Handler struct {
	service *Service
	guildID string
}

// NewHandler creates a new award handler
func NewHandler(service *Service, guildID string) *Handler {
	return &Handler{service: service, guildID: guildID}
}

// Routes returns the router for award endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/members", h.AwardMember)
	r.Post("/gangs", h.AwardGang)

	return r
}

// AwardMember handles POST /awards/members
// @Summary      Award points to a member
// @Description  Apply a positive or negative point delta to a member's current gang bucket
// @Tags         awards
// @Accept       json
// @Produce      json
// @Param        request body MemberAwardRequest true "Award"
// @Success      200 {object} response.APIResponse{data=member.MemberResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /awards/members [post]
func (h *Handler) AwardMember(w http.ResponseWriter, r *http.Request) {
	var req MemberAwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.DiscordID == "" {
		response.BadRequest(w, "discord_id is required")
		return
	}
	if req.GuildID == "" {
		req.GuildID = h.guildID
	}

	m, err := h.service.AwardMemberPoints(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDelta):
			response.BadRequest(w, err.Error())
		case errors.Is(err, member.ErrMemberNotFound):
			response.NotFound(w, "Member not registered; register the member first")
		default:
			response.InternalError(w, "Failed to award points")
		}
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// AwardGang handles POST /awards/gangs
// @Summary      Award points to a gang
// @Description  Apply a positive or negative point delta to a gang's direct pool
// @Tags         awards
// @Accept       json
// @Produce      json
// @Param        request body GangAwardRequest true "Award"
// @Success      200 {object} response.APIResponse{data=gang.GangResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /awards/gangs [post]
func (h *Handler) AwardGang(w http.ResponseWriter, r *http.Request) {
	var req GangAwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.GangID == "" {
		response.BadRequest(w, "gang_id is required")
		return
	}
	if req.GuildID == "" {
		req.GuildID = h.guildID
	}

	g, err := h.service.AwardGangPoints(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDelta):
			response.BadRequest(w, err.Error())
		case errors.Is(err, gang.ErrGangNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to award points")
		}
		return
	}

	response.JSON(w, http.StatusOK, g.ToResponse())
}
