package gang

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gangboard/internal/config"
)

// Common errors
var (
	ErrGangNotFound = errors.New("gang not found")
)

// MemberMigrator moves members between gangs during orphan cleanup
type MemberMigrator interface {
	BulkSwitchGang(ctx context.Context, fromGangID, toGangID, toGangName string, categories []string) (int, error)
}

// Service handles gang lifecycle: roster sync, orphan cleanup and reads
type Service struct {
	repo             *Repository
	migrator         MemberMigrator
	gangCategories   []string
	memberCategories []string
}

// NewService creates a new gang service
func NewService(repo *Repository, migrator MemberMigrator, gangCategories, memberCategories []string) *Service {
	return &Service{
		repo:             repo,
		migrator:         migrator,
		gangCategories:   gangCategories,
		memberCategories: memberCategories,
	}
}

// GetByGangID retrieves a gang by its stable id
func (s *Service) GetByGangID(ctx context.Context, guildID, gangID string) (*Gang, error) {
	g, err := s.repo.GetByGangID(ctx, guildID, gangID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGangNotFound
	}
	return g, nil
}

// List returns all gangs of the guild ordered by combined score
func (s *Service) List(ctx context.Context, guildID string, weekly bool) ([]*Gang, error) {
	return s.repo.ListByTotalScore(ctx, guildID, weekly)
}

// SyncRoster idempotently creates or refreshes every configured gang.
// Run at startup and whenever the roster file changes.
func (s *Service) SyncRoster(ctx context.Context, guildID string, roster []config.GangConfig) error {
	for _, gc := range roster {
		if _, err := s.repo.Upsert(ctx, guildID, gc.GangID, gc.Name, gc.RoleID, gc.ChannelID, s.gangCategories); err != nil {
			return fmt.Errorf("failed to sync gang %s: %w", gc.GangID, err)
		}
	}
	return nil
}

// CleanupOrphans removes gangs that dropped out of the roster, migrating
// their members to the default gang first so nobody ends up gangless
func (s *Service) CleanupOrphans(ctx context.Context, guildID string, roster []config.GangConfig, defaultGangID string) error {
	rosterIDs := make([]string, len(roster))
	for i, gc := range roster {
		rosterIDs[i] = gc.GangID
	}

	orphans, err := s.repo.ListOrphans(ctx, guildID, rosterIDs)
	if err != nil {
		return err
	}
	if len(orphans) == 0 {
		return nil
	}

	def, err := s.repo.GetByGangID(ctx, guildID, defaultGangID)
	if err != nil {
		return err
	}
	if def == nil {
		return fmt.Errorf("default gang %s not found: %w", defaultGangID, ErrGangNotFound)
	}

	for _, orphan := range orphans {
		moved, err := s.migrator.BulkSwitchGang(ctx, orphan.GangID, def.GangID, def.Name, s.memberCategories)
		if err != nil {
			return fmt.Errorf("failed to migrate members out of gang %s: %w", orphan.GangID, err)
		}
		if moved > 0 {
			log.Printf("moved %d members from removed gang %s to %s", moved, orphan.Name, def.Name)
		}

		if err := s.repo.Delete(ctx, guildID, orphan.GangID); err != nil {
			return err
		}
		log.Printf("deleted gang %s (%s): no longer in roster", orphan.Name, orphan.GangID)
	}

	if err := s.repo.RefreshMemberTotals(ctx, guildID, def.GangID); err != nil {
		return err
	}

	return nil
}
