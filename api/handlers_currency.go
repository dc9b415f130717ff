package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"phlock/application"
	"phlock/domain/entities"
	"phlock/domain/services"
)

type socialCurrencyResponse struct {
	CuratorID uuid.UUID `json:"curatorId"`
	SlotCount int       `json:"slotCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Server) handleGetSocialCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	curatorID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var count *entities.SocialCurrencyCount
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		svc := services.NewSocialCurrencyService(uow.SocialCurrencyRepository())
		var err error
		count, err = svc.GetCount(ctx, curatorID)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, socialCurrencyResponse{
		CuratorID: count.CuratorID,
		SlotCount: count.SlotCount,
		UpdatedAt: count.UpdatedAt,
	})
}

type auditEntryResponse struct {
	ID        int64     `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Position  int       `json:"position"`
	Delta     int       `json:"delta"`
	CreatedAt time.Time `json:"createdAt"`
}

type auditResponse struct {
	CuratorID uuid.UUID            `json:"curatorId"`
	Entries   []auditEntryResponse `json:"entries"`
}

func (s *Server) handleGetSocialCurrencyAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	curatorID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	limit := limitQuery(r, 50, 200)

	var entries []*entities.SocialCurrencyAuditEntry
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		svc := services.NewSocialCurrencyService(uow.SocialCurrencyRepository())
		var err error
		entries, err = svc.GetAudit(ctx, curatorID, limit)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := auditResponse{
		CuratorID: curatorID,
		Entries:   make([]auditEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, auditEntryResponse{
			ID:        entry.ID,
			OwnerID:   entry.OwnerID,
			Position:  entry.Position,
			Delta:     entry.Delta,
			CreatedAt: entry.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleVerifySocialCurrency recounts the curator's slot memberships and
// compares the result against the stored counter. A divergence is a
// consistency violation and reads as a 500.
func (s *Server) handleVerifySocialCurrency(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	curatorID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var count *entities.SocialCurrencyCount
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		svc := services.NewSocialCurrencyService(uow.SocialCurrencyRepository())
		var err error
		count, err = svc.VerifyCount(ctx, curatorID)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, socialCurrencyResponse{
		CuratorID: count.CuratorID,
		SlotCount: count.SlotCount,
		UpdatedAt: count.UpdatedAt,
	})
}
