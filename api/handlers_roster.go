package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"phlock/application"
	"phlock/domain/entities"
	"phlock/domain/services"
	"phlock/infrastructure/observability"
)

type slotResponse struct {
	Position           int        `json:"position"`
	CuratorID          *uuid.UUID `json:"curatorId"`
	CuratorPostedToday bool       `json:"curatorPostedToday"`
}

type pendingSwapResponse struct {
	Position          int        `json:"position"`
	OutgoingCuratorID *uuid.UUID `json:"outgoingCuratorId,omitempty"`
	IncomingCuratorID uuid.UUID  `json:"incomingCuratorId"`
	EffectiveDate     string     `json:"effectiveDate"`
	RequestedAt       time.Time  `json:"requestedAt"`
}

type rosterResponse struct {
	OwnerID uuid.UUID             `json:"ownerId"`
	Slots   []slotResponse        `json:"slots"`
	Pending []pendingSwapResponse `json:"pendingSwaps"`
}

func newPendingSwapResponse(p *entities.PendingSwap) pendingSwapResponse {
	return pendingSwapResponse{
		Position:          p.Position,
		OutgoingCuratorID: p.OutgoingCuratorID,
		IncomingCuratorID: p.IncomingCuratorID,
		EffectiveDate:     entities.FormatDate(p.EffectiveDate),
		RequestedAt:       p.RequestedAt,
	}
}

func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var view *entities.RosterView
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		svc := services.NewRosterService(uow.RosterRepository(), uow.DailyPickRepository(), uow.PendingSwapRepository())
		var err error
		view, err = svc.GetRoster(ctx, ownerID, time.Now())
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := rosterResponse{
		OwnerID: view.OwnerID,
		Slots:   make([]slotResponse, 0, len(view.Slots)),
		Pending: make([]pendingSwapResponse, 0, len(view.Pending)),
	}
	for _, slot := range view.Slots {
		resp.Slots = append(resp.Slots, slotResponse{
			Position:           slot.Position,
			CuratorID:          slot.CuratorID,
			CuratorPostedToday: slot.CuratorPostedToday,
		})
	}
	for _, pending := range view.Pending {
		resp.Pending = append(resp.Pending, newPendingSwapResponse(pending))
	}

	writeJSON(w, http.StatusOK, resp)
}

type swapRequest struct {
	Position     int       `json:"position"`
	NewCuratorID uuid.UUID `json:"newCuratorId"`
}

type swapResponse struct {
	Status        string `json:"status"`
	Position      int    `json:"position"`
	EffectiveDate string `json:"effectiveDate"`
}

func (s *Server) handleRequestSwap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req swapRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var result *entities.SwapResult
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		scheduler := services.NewSwapScheduler(
			uow.UserRepository(),
			uow.RosterRepository(),
			uow.DailyPickRepository(),
			uow.PendingSwapRepository(),
			uow.SwapLedgerRepository(),
			uow.EventBus(),
		)
		var err error
		result, err = scheduler.RequestSwap(ctx, ownerID, req.Position, req.NewCuratorID, time.Now())
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if metrics := observability.GetMetrics(); metrics != nil {
		outcome := observability.OutcomeDeferred
		if result.Outcome == entities.SwapOutcomeAppliedImmediate {
			outcome = observability.OutcomeApplied
		}
		metrics.RecordSwapScheduled(outcome)
	}

	writeJSON(w, http.StatusOK, swapResponse{
		Status:        string(result.Outcome),
		Position:      req.Position,
		EffectiveDate: entities.FormatDate(result.EffectiveDate),
	})
}

type cancelResponse struct {
	Status   string `json:"status"`
	Position int    `json:"position"`
}

func (s *Server) handleCancelSwap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	position, ok := positionParam(w, r)
	if !ok {
		return
	}

	var result *entities.CancelResult
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		scheduler := services.NewSwapScheduler(
			uow.UserRepository(),
			uow.RosterRepository(),
			uow.DailyPickRepository(),
			uow.PendingSwapRepository(),
			uow.SwapLedgerRepository(),
			uow.EventBus(),
		)
		var err error
		result, err = scheduler.CancelPendingSwap(ctx, ownerID, position, time.Now())
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cancelResponse{
		Status:   string(result.Outcome),
		Position: position,
	})
}

type playlistEntryResponse struct {
	Position  int        `json:"position"`
	CuratorID *uuid.UUID `json:"curatorId"`
	ItemRef   *string    `json:"itemRef"`
}

type playlistResponse struct {
	Date    string                  `json:"date"`
	Entries []playlistEntryResponse `json:"entries"`
}

// handleGetPlaylist returns the owner's playlist for a date: one entry per
// slot, with itemRef null wherever the slot's curator had no pick that day.
func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	date, ok := dateQuery(w, r)
	if !ok {
		return
	}

	var entries []*entities.PlaylistEntry
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		svc := services.NewRosterService(uow.RosterRepository(), uow.DailyPickRepository(), uow.PendingSwapRepository())
		var err error
		entries, err = svc.GetPlaylist(ctx, ownerID, date)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := playlistResponse{
		Date:    entities.FormatDate(date),
		Entries: make([]playlistEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, playlistEntryResponse{
			Position:  entry.Position,
			CuratorID: entry.CuratorID,
			ItemRef:   entry.ItemRef,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
