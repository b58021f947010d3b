package leaderboard

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gangboard/internal/gang"
	"gangboard/internal/member"
	"gangboard/pkg/response"
)

// MemberRow is one line of the member leaderboard
type MemberRow struct {
	Rank      int    `json:"rank"`
	DiscordID string `json:"discord_id"`
	Username  string `json:"username"`
	GangName  string `json:"gang_name"`
	Points    int64  `json:"points"`
}

// RankResponse answers a single member's rank query
type RankResponse struct {
	DiscordID string `json:"discord_id"`
	Username  string `json:"username"`
	Points    int64  `json:"points"`
	Rank      int    `json:"rank"`
}

// Handler handles HTTP requests for leaderboard queries
type Handler struct {
	service *Service
	guildID string
}

// NewHandler creates a new leaderboard handler
func NewHandler(service *Service, guildID string) *Handler {
	return &Handler{service: service, guildID: guildID}
}

// Routes returns the router for leaderboard endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/members", h.Members)
	r.Get("/members/{discordId}/rank", h.MemberRank)
	r.Get("/gangs", h.Gangs)

	return r
}

// Members handles GET /leaderboard/members
// @Summary      Member leaderboard
// @Description  Members with positive scores, highest first; optionally one gang only
// @Tags         leaderboard
// @Produce      json
// @Param        gang_id query string false "Narrow to one gang"
// @Param        weekly query bool false "Rank by weekly points"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]MemberRow}
// @Router       /leaderboard/members [get]
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	weekly := r.URL.Query().Get("weekly") == "true"
	gangID := r.URL.Query().Get("gang_id")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	members, err := h.service.TopMembers(r.Context(), h.guildID, gangID, weekly, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to build leaderboard")
		return
	}

	rows := make([]*MemberRow, len(members))
	for i, m := range members {
		score := m.Points
		if weekly {
			score = m.WeeklyPoints
		}
		rows[i] = &MemberRow{
			Rank:      (page-1)*perPage + i + 1,
			DiscordID: m.DiscordID,
			Username:  m.Username,
			GangName:  m.CurrentGangName,
			Points:    score,
		}
	}

	response.JSON(w, http.StatusOK, rows)
}

// MemberRank handles GET /leaderboard/members/{discordId}/rank
// @Summary      Member rank
// @Description  A member's position on the guild board
// @Tags         leaderboard
// @Produce      json
// @Param        discordId path string true "Member platform ID"
// @Param        weekly query bool false "Rank by weekly points"
// @Success      200 {object} response.APIResponse{data=RankResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /leaderboard/members/{discordId}/rank [get]
func (h *Handler) MemberRank(w http.ResponseWriter, r *http.Request) {
	weekly := r.URL.Query().Get("weekly") == "true"
	discordID := chi.URLParam(r, "discordId")

	m, rank, err := h.service.MemberRank(r.Context(), h.guildID, discordID, weekly)
	if err != nil {
		if errors.Is(err, member.ErrMemberNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to rank member")
		return
	}

	score := m.Points
	if weekly {
		score = m.WeeklyPoints
	}

	response.JSON(w, http.StatusOK, &RankResponse{
		DiscordID: m.DiscordID,
		Username:  m.Username,
		Points:    score,
		Rank:      rank,
	})
}

// Gangs handles GET /leaderboard/gangs
// @Summary      Gang leaderboard
// @Description  Gangs by combined score: direct points plus cached member points
// @Tags         leaderboard
// @Produce      json
// @Param        weekly query bool false "Rank by weekly score"
// @Success      200 {object} response.APIResponse{data=[]gang.GangResponse}
// @Router       /leaderboard/gangs [get]
func (h *Handler) Gangs(w http.ResponseWriter, r *http.Request) {
	weekly := r.URL.Query().Get("weekly") == "true"

	gangs, err := h.service.TopGangs(r.Context(), h.guildID, weekly)
	if err != nil {
		response.InternalError(w, "Failed to build gang leaderboard")
		return
	}

	rows := make([]*gang.GangResponse, len(gangs))
	for i, g := range gangs {
		rows[i] = g.ToResponse()
	}

	response.JSON(w, http.StatusOK, rows)
}
