package member

import (
	"context"
	"errors"
	"log"
	"time"

	"gangboard/internal/database"
)

// Common errors
var (
	ErrMemberNotFound = errors.New("member not found")
)

// GangRefresher recomputes a gang's cached member aggregates after a
// membership change. Refreshes are best effort and never roll back the
// member mutation that triggered them.
type GangRefresher interface {
	RefreshMemberTotals(ctx context.Context, guildID, gangID string) error
}

// Store covers the member persistence the service needs
type Store interface {
	GetByDiscordID(ctx context.Context, guildID, discordID string) (*Member, error)
	List(ctx context.Context, guildID string, limit, offset int) ([]*Member, int, error)
	Atomically(ctx context.Context, guildID, discordID string, fn func(q database.Querier, m *Member) error) (*Member, error)
	TrackAtomically(ctx context.Context, seed *Member, fn func(q database.Querier, m *Member) error) (*Member, error)
}

// Service handles member business logic, including gang membership changes
type Service struct {
	repo       Store
	refresher  GangRefresher
	categories []string
}

// NewService creates a new member service
func NewService(repo Store, refresher GangRefresher, categories []string) *Service {
	return &Service{repo: repo, refresher: refresher, categories: categories}
}

// GetByDiscordID retrieves a member by their platform id
func (s *Service) GetByDiscordID(ctx context.Context, guildID, discordID string) (*Member, error) {
	m, err := s.repo.GetByDiscordID(ctx, guildID, discordID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// List retrieves members of a guild with pagination
func (s *Service) List(ctx context.Context, guildID string, page, perPage int) ([]*Member, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, guildID, perPage, offset)
}

// RegisterOrUpdate is an idempotent upsert: a new member starts with a zero
// bucket in the given gang; an existing member gets their username refreshed
// and is switched over if the resolved gang differs from their current one.
// Concurrent registrations of the same member collapse on the unique
// (guild, discord id) key instead of racing to a constraint violation.
func (s *Service) RegisterOrUpdate(ctx context.Context, guildID, discordID, username, gangID, gangName string) (*Member, error) {
	seed := New(guildID, discordID, username, gangID, gangName, s.categories)

	var oldGangID string
	m, err := s.repo.TrackAtomically(ctx, seed, func(q database.Querier, m *Member) error {
		oldGangID = m.CurrentGangID
		m.Username = username
		m.SwitchGang(gangID, gangName, s.categories)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, guildID, gangID)
	if oldGangID != "" && oldGangID != gangID {
		s.refresh(ctx, guildID, oldGangID)
	}

	return m, nil
}

// SwitchGang moves a member to a gang resolved by the caller (role sync is
// an external collaborator's job). A switch is not a point event, so no
// activity log entry is written.
func (s *Service) SwitchGang(ctx context.Context, guildID, discordID, gangID, gangName string) (*Member, error) {
	var oldGangID string
	m, err := s.repo.Atomically(ctx, guildID, discordID, func(q database.Querier, m *Member) error {
		oldGangID = m.CurrentGangID
		m.SwitchGang(gangID, gangName, s.categories)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldGangID != gangID {
		s.refresh(ctx, guildID, gangID)
		if oldGangID != "" {
			s.refresh(ctx, guildID, oldGangID)
		}
	}

	return m, nil
}

// ResetMember zeroes a single member's points, weekly and lifetime, then
// refreshes their gang's caches
func (s *Service) ResetMember(ctx context.Context, guildID, discordID string) (*Member, error) {
	m, err := s.repo.Atomically(ctx, guildID, discordID, func(q database.Querier, m *Member) error {
		m.ResetAll(time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.CurrentGangID != "" {
		s.refresh(ctx, guildID, m.CurrentGangID)
	}

	return m, nil
}

func (s *Service) refresh(ctx context.Context, guildID, gangID string) {
	if err := s.refresher.RefreshMemberTotals(ctx, guildID, gangID); err != nil {
		log.Printf("failed to refresh gang %s totals: %v", gangID, err)
	}
}
