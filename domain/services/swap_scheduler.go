package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"phlock/domain/entities"
	"phlock/domain/events"
	"phlock/domain/interfaces"
)

type swapScheduler struct {
	userRepo        interfaces.UserRepository
	rosterRepo      interfaces.RosterRepository
	dailyPickRepo   interfaces.DailyPickRepository
	pendingSwapRepo interfaces.PendingSwapRepository
	swapLedgerRepo  interfaces.SwapLedgerRepository
	eventPublisher  interfaces.EventPublisher
}

// NewSwapScheduler creates a new swap scheduler service
func NewSwapScheduler(
	userRepo interfaces.UserRepository,
	rosterRepo interfaces.RosterRepository,
	dailyPickRepo interfaces.DailyPickRepository,
	pendingSwapRepo interfaces.PendingSwapRepository,
	swapLedgerRepo interfaces.SwapLedgerRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.SwapScheduler {
	return &swapScheduler{
		userRepo:        userRepo,
		rosterRepo:      rosterRepo,
		dailyPickRepo:   dailyPickRepo,
		pendingSwapRepo: pendingSwapRepo,
		swapLedgerRepo:  swapLedgerRepo,
		eventPublisher:  eventPublisher,
	}
}

// RequestSwap validates and resolves a swap request. The quota ledger is
// written before anything else so that a duplicate same-day request fails
// fast; if any later step rejects the request the surrounding transaction
// rolls back and the quota entry with it, so rejected requests never consume
// the day's swap.
func (s *swapScheduler) RequestSwap(ctx context.Context, ownerID uuid.UUID, position int, incomingCuratorID uuid.UUID, now time.Time) (*entities.SwapResult, error) {
	if ownerID == uuid.Nil {
		return nil, entities.NewValidationError("ownerId", "cannot be empty")
	}
	if !entities.ValidPosition(position) {
		return nil, entities.NewValidationError("position", fmt.Sprintf("must be between %d and %d", entities.MinPosition, entities.MaxPosition))
	}
	if incomingCuratorID == uuid.Nil {
		return nil, entities.NewValidationError("incomingCuratorId", "cannot be empty")
	}

	today := entities.DateOf(now)

	if _, err := s.userRepo.GetOrCreate(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("failed to ensure owner exists: %w", err)
	}

	if err := s.swapLedgerRepo.Record(ctx, ownerID, today); err != nil {
		return nil, err
	}

	slot, err := s.rosterRepo.GetSlotForUpdate(ctx, ownerID, position)
	if err != nil {
		return nil, fmt.Errorf("failed to lock roster slot: %w", err)
	}
	if slot == nil {
		return nil, entities.NewConsistencyViolation("owner %s has no slot row at position %d", ownerID, position)
	}

	if slot.HoldsCurator(incomingCuratorID) {
		return nil, entities.NewValidationError("incomingCuratorId", "already occupies this slot")
	}

	slots, err := s.rosterRepo.GetSlots(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster slots: %w", err)
	}
	for _, other := range slots {
		if other.Position != position && other.HoldsCurator(incomingCuratorID) {
			return nil, entities.NewValidationError("incomingCuratorId", fmt.Sprintf("already on roster at position %d", other.Position))
		}
	}

	outgoingPosted := false
	if !slot.IsEmpty() {
		outgoingPosted, err = s.dailyPickRepo.HasPostedOn(ctx, *slot.CuratorID, today)
		if err != nil {
			return nil, fmt.Errorf("failed to check outgoing curator's pick: %w", err)
		}
	}

	if outgoingPosted {
		return s.deferSwap(ctx, slot, incomingCuratorID, now, today)
	}
	return s.applySwapNow(ctx, slot, incomingCuratorID, today)
}

// applySwapNow changes the slot in place. Any swap still queued for the slot
// is superseded: the owner's latest accepted request is the one that counts.
func (s *swapScheduler) applySwapNow(ctx context.Context, slot *entities.RosterSlot, incomingCuratorID uuid.UUID, today time.Time) (*entities.SwapResult, error) {
	superseded, err := s.pendingSwapRepo.CancelPending(ctx, slot.OwnerID, slot.Position, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to supersede pending swap: %w", err)
	}
	if superseded != nil {
		s.publishCancelled(superseded)
	}

	write, err := s.rosterRepo.SetSlot(ctx, slot.OwnerID, slot.Position, &incomingCuratorID)
	if err != nil {
		return nil, fmt.Errorf("failed to write roster slot: %w", err)
	}

	if err := s.eventPublisher.Publish(events.SwapAppliedEvent{
		OwnerID:           slot.OwnerID,
		Position:          slot.Position,
		OutgoingCuratorID: write.Outgoing,
		IncomingCuratorID: incomingCuratorID,
		EffectiveDate:     today,
		Deferred:          false,
	}); err != nil {
		log.WithError(err).Error("Failed to publish swap applied event")
	}
	s.publishCounterMoves(slot.OwnerID, slot.Position, write.Moves)

	return &entities.SwapResult{
		Outcome:       entities.SwapOutcomeAppliedImmediate,
		EffectiveDate: today,
	}, nil
}

// deferSwap queues the swap for the next day boundary, replacing any swap
// already queued for the slot.
func (s *swapScheduler) deferSwap(ctx context.Context, slot *entities.RosterSlot, incomingCuratorID uuid.UUID, now, today time.Time) (*entities.SwapResult, error) {
	pending := &entities.PendingSwap{
		OwnerID:           slot.OwnerID,
		Position:          slot.Position,
		OutgoingCuratorID: slot.CuratorID,
		IncomingCuratorID: incomingCuratorID,
		RequestedAt:       now,
		EffectiveDate:     entities.NextDay(today),
		Status:            entities.PendingSwapStatusPending,
	}

	queued, err := s.pendingSwapRepo.Upsert(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("failed to queue pending swap: %w", err)
	}

	if err := s.eventPublisher.Publish(events.SwapDeferredEvent{
		OwnerID:           queued.OwnerID,
		Position:          queued.Position,
		OutgoingCuratorID: queued.OutgoingCuratorID,
		IncomingCuratorID: queued.IncomingCuratorID,
		EffectiveDate:     queued.EffectiveDate,
	}); err != nil {
		log.WithError(err).Error("Failed to publish swap deferred event")
	}

	return &entities.SwapResult{
		Outcome:       entities.SwapOutcomeDeferred,
		EffectiveDate: queued.EffectiveDate,
		Pending:       queued,
	}, nil
}

// CancelPendingSwap withdraws the pending swap at a position. The swap quota
// already consumed by the cancelled request is not refunded.
func (s *swapScheduler) CancelPendingSwap(ctx context.Context, ownerID uuid.UUID, position int, now time.Time) (*entities.CancelResult, error) {
	if ownerID == uuid.Nil {
		return nil, entities.NewValidationError("ownerId", "cannot be empty")
	}
	if !entities.ValidPosition(position) {
		return nil, entities.NewValidationError("position", fmt.Sprintf("must be between %d and %d", entities.MinPosition, entities.MaxPosition))
	}

	cancelled, err := s.pendingSwapRepo.CancelPending(ctx, ownerID, position, entities.DateOf(now))
	if err != nil {
		return nil, fmt.Errorf("failed to cancel pending swap: %w", err)
	}
	if cancelled == nil {
		return &entities.CancelResult{Outcome: entities.CancelOutcomeNoop}, nil
	}

	s.publishCancelled(cancelled)

	return &entities.CancelResult{
		Outcome:   entities.CancelOutcomeCancelled,
		Cancelled: cancelled,
	}, nil
}

// ApplyPendingSwap applies one due pending swap to the roster. The row is
// flipped to applied first with a conditional update, so a row the owner
// cancelled in the meantime resolves as a skip rather than a roster write.
func (s *swapScheduler) ApplyPendingSwap(ctx context.Context, swap *entities.PendingSwap) (bool, error) {
	flipped, err := s.pendingSwapRepo.MarkApplied(ctx, swap.ID)
	if err != nil {
		return false, fmt.Errorf("failed to mark pending swap applied: %w", err)
	}
	if !flipped {
		return false, nil
	}

	slot, err := s.rosterRepo.GetSlotForUpdate(ctx, swap.OwnerID, swap.Position)
	if err != nil {
		return false, fmt.Errorf("failed to lock roster slot: %w", err)
	}
	if slot == nil {
		return false, entities.NewConsistencyViolation("owner %s has no slot row at position %d", swap.OwnerID, swap.Position)
	}

	// The slot must still hold the curator the request displaced. A
	// mismatch means the roster moved after the request was queued; the
	// stale swap resolves without touching the slot.
	if !sameOccupant(slot.CuratorID, swap.OutgoingCuratorID) {
		log.WithFields(log.Fields{
			"ownerId":  swap.OwnerID,
			"position": swap.Position,
			"swapId":   swap.ID,
		}).Warn("Skipping pending swap: slot occupant changed since request")
		return false, nil
	}

	// Same guard for the incoming side: if the curator landed elsewhere on
	// the roster in the meantime, applying would duplicate them.
	slots, err := s.rosterRepo.GetSlots(ctx, swap.OwnerID)
	if err != nil {
		return false, fmt.Errorf("failed to get roster slots: %w", err)
	}
	for _, other := range slots {
		if other.Position != swap.Position && other.HoldsCurator(swap.IncomingCuratorID) {
			log.WithFields(log.Fields{
				"ownerId":  swap.OwnerID,
				"position": swap.Position,
				"swapId":   swap.ID,
			}).Warn("Skipping pending swap: incoming curator already on roster")
			return false, nil
		}
	}

	write, err := s.rosterRepo.SetSlot(ctx, swap.OwnerID, swap.Position, &swap.IncomingCuratorID)
	if err != nil {
		return false, fmt.Errorf("failed to write roster slot: %w", err)
	}

	if err := s.eventPublisher.Publish(events.SwapAppliedEvent{
		OwnerID:           swap.OwnerID,
		Position:          swap.Position,
		OutgoingCuratorID: write.Outgoing,
		IncomingCuratorID: swap.IncomingCuratorID,
		EffectiveDate:     swap.EffectiveDate,
		Deferred:          true,
	}); err != nil {
		log.WithError(err).Error("Failed to publish swap applied event")
	}
	s.publishCounterMoves(swap.OwnerID, swap.Position, write.Moves)

	return true, nil
}

func (s *swapScheduler) publishCancelled(swap *entities.PendingSwap) {
	if err := s.eventPublisher.Publish(events.SwapCancelledEvent{
		OwnerID:           swap.OwnerID,
		Position:          swap.Position,
		IncomingCuratorID: swap.IncomingCuratorID,
		EffectiveDate:     swap.EffectiveDate,
	}); err != nil {
		log.WithError(err).Error("Failed to publish swap cancelled event")
	}
}

func (s *swapScheduler) publishCounterMoves(ownerID uuid.UUID, position int, moves []entities.CounterMove) {
	for _, move := range moves {
		if err := s.eventPublisher.Publish(events.SocialCurrencyMoveEvent{
			CuratorID: move.CuratorID,
			OwnerID:   ownerID,
			Position:  position,
			Delta:     move.Delta,
			NewCount:  move.NewCount,
		}); err != nil {
			log.WithError(err).Error("Failed to publish social currency move event")
		}
	}
}

func sameOccupant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
