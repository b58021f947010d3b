package tracker

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gangboard/internal/member"
	"gangboard/pkg/response"
)

// TrackResult reports what a message-observed event did
type TrackResult struct {
	Awarded bool                   `json:"awarded"`
	Member  *member.MemberResponse `json:"member,omitempty"`
}

// Handler receives message-observed events from the chat binding layer
type Handler struct {
	service *Service
	guildID string
}

// NewHandler creates a new tracker handler
func NewHandler(service *Service, guildID string) *Handler {
	return &Handler{service: service, guildID: guildID}
}

// Routes returns the router for message events
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Track)
	return r
}

// Track handles POST /messages
// @Summary      Report an observed chat message
// @Description  Evaluates spam/cooldown rules and may award one activity point
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body Message true "Observed message"
// @Success      200 {object} response.APIResponse{data=TrackResult}
// @Failure      400 {object} response.APIResponse
// @Router       /messages [post]
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if msg.DiscordID == "" || msg.ChannelID == "" {
		response.BadRequest(w, "discord_id and channel_id are required")
		return
	}
	if msg.GuildID == "" {
		msg.GuildID = h.guildID
	}

	m, awarded, err := h.service.TrackMessage(r.Context(), &msg)
	if err != nil {
		response.InternalError(w, "Failed to track message")
		return
	}

	result := &TrackResult{Awarded: awarded}
	if m != nil {
		result.Member = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, result)
}
