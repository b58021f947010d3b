package member

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gangboard/pkg/response"
)

// Handler handles HTTP requests for member operations
type Handler struct {
	service *Service
	guildID string
}

// NewHandler creates a new member handler
func NewHandler(service *Service, guildID string) *Handler {
	return &Handler{service: service, guildID: guildID}
}

// Routes returns the router for member endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Register)
	r.Get("/{discordId}", h.GetByID)
	r.Put("/{discordId}/gang", h.SwitchGang)
	r.Post("/{discordId}/reset", h.Reset)

	return r
}

// List handles GET /members
// @Summary      List members
// @Description  Get a paginated list of members in the guild
// @Tags         members
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Router       /members [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	members, total, err := h.service.List(r.Context(), h.guildID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list members")
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	response.JSONWithMeta(w, http.StatusOK, memberResponses, meta)
}

// Register handles POST /members
// @Summary      Register or update a member
// @Description  Idempotent upsert; switches gang when the resolved gang differs
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        request body RegisterMemberRequest true "Member registration"
// @Success      200 {object} response.APIResponse{data=MemberResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /members [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.DiscordID == "" || req.Username == "" || req.GangID == "" {
		response.BadRequest(w, "discord_id, username and gang_id are required")
		return
	}

	guildID := req.GuildID
	if guildID == "" {
		guildID = h.guildID
	}

	m, err := h.service.RegisterOrUpdate(r.Context(), guildID, req.DiscordID, req.Username, req.GangID, req.GangName)
	if err != nil {
		response.InternalError(w, "Failed to register member")
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// GetByID handles GET /members/{discordId}
// @Summary      Get member
// @Description  Get a member with their full gang point history
// @Tags         members
// @Produce      json
// @Param        discordId path string true "Member platform ID"
// @Success      200 {object} response.APIResponse{data=MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /members/{discordId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordId")

	m, err := h.service.GetByDiscordID(r.Context(), h.guildID, discordID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get member")
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// SwitchGang handles PUT /members/{discordId}/gang
func (h *Handler) SwitchGang(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordId")

	var req SwitchGangRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.GangID == "" {
		response.BadRequest(w, "gang_id is required")
		return
	}

	guildID := req.GuildID
	if guildID == "" {
		guildID = h.guildID
	}

	m, err := h.service.SwitchGang(r.Context(), guildID, discordID, req.GangID, req.GangName)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to switch gang")
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// Reset handles POST /members/{discordId}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	discordID := chi.URLParam(r, "discordId")

	m, err := h.service.ResetMember(r.Context(), h.guildID, discordID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to reset member")
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}
