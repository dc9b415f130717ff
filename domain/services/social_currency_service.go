package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"phlock/domain/entities"
	"phlock/domain/interfaces"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type socialCurrencyService struct {
	socialCurrencyRepo interfaces.SocialCurrencyRepository
}

// NewSocialCurrencyService creates a new social currency read service
func NewSocialCurrencyService(socialCurrencyRepo interfaces.SocialCurrencyRepository) interfaces.SocialCurrencyService {
	return &socialCurrencyService{
		socialCurrencyRepo: socialCurrencyRepo,
	}
}

// GetCount returns the curator's current slot count. A curator nobody has
// ever rostered reports zero rather than not-found.
func (s *socialCurrencyService) GetCount(ctx context.Context, curatorID uuid.UUID) (*entities.SocialCurrencyCount, error) {
	if curatorID == uuid.Nil {
		return nil, entities.NewValidationError("curatorId", "cannot be empty")
	}

	count, err := s.socialCurrencyRepo.GetCount(ctx, curatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get social currency count: %w", err)
	}
	if count == nil {
		return &entities.SocialCurrencyCount{CuratorID: curatorID}, nil
	}
	return count, nil
}

// GetAudit returns the curator's recent count movements, newest first.
func (s *socialCurrencyService) GetAudit(ctx context.Context, curatorID uuid.UUID, limit int) ([]*entities.SocialCurrencyAuditEntry, error) {
	if curatorID == uuid.Nil {
		return nil, entities.NewValidationError("curatorId", "cannot be empty")
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := s.socialCurrencyRepo.ListAudit(ctx, curatorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list social currency audit: %w", err)
	}
	return entries, nil
}

// VerifyCount recomputes the curator's count from the roster slots and
// compares it to the stored counter. Divergence is a consistency violation:
// the counter is repaired by operators, never silently.
func (s *socialCurrencyService) VerifyCount(ctx context.Context, curatorID uuid.UUID) (*entities.SocialCurrencyCount, error) {
	if curatorID == uuid.Nil {
		return nil, entities.NewValidationError("curatorId", "cannot be empty")
	}

	stored, err := s.socialCurrencyRepo.GetCount(ctx, curatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get social currency count: %w", err)
	}
	storedCount := 0
	if stored != nil {
		storedCount = stored.SlotCount
	}

	actual, err := s.socialCurrencyRepo.RecountFromSlots(ctx, curatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to recount slots: %w", err)
	}

	if storedCount != actual {
		return nil, entities.NewConsistencyViolation("social currency count for curator %s is %d but %d slots reference them", curatorID, storedCount, actual)
	}

	if stored == nil {
		return &entities.SocialCurrencyCount{CuratorID: curatorID}, nil
	}
	return stored, nil
}
