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

type pickRequest struct {
	ItemRef string `json:"itemRef"`
	// Date overrides the pick date for replays and tests. Empty means
	// today. A date at or before the user's last pick cannot be applied.
	Date string `json:"date,omitempty"`
}

type pickResponse struct {
	UserID      uuid.UUID `json:"userId"`
	PickDate    string    `json:"pickDate"`
	ItemRef     string    `json:"itemRef"`
	StreakCount int       `json:"streakCount"`
	Milestone   bool      `json:"milestone"`
}

func (s *Server) handleRecordPick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}
	var req pickRequest
	if !decodeBody(w, r, &req) {
		return
	}

	now := time.Now()
	if req.Date != "" {
		parsed, err := entities.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid date, want YYYY-MM-DD")
			return
		}
		now = parsed
	}

	var result *entities.PickResult
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		svc := services.NewPickService(uow.UserRepository(), uow.DailyPickRepository(), uow.EventBus())
		var err error
		result, err = svc.RecordDailyPick(ctx, userID, req.ItemRef, now)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if metrics := observability.GetMetrics(); metrics != nil {
		metrics.RecordPickRecorded()
		if result.Milestone {
			metrics.RecordStreakMilestone(result.StreakCount)
		}
	}

	writeJSON(w, http.StatusCreated, pickResponse{
		UserID:      userID,
		PickDate:    entities.FormatDate(result.Pick.PickDate),
		ItemRef:     result.Pick.ItemRef,
		StreakCount: result.StreakCount,
		Milestone:   result.Milestone,
	})
}

type streakResponse struct {
	UserID       uuid.UUID `json:"userId"`
	StreakCount  int       `json:"streakCount"`
	LastPickDate *string   `json:"lastPickDate"`
}

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var user *entities.User
	err := application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		svc := services.NewPickService(uow.UserRepository(), uow.DailyPickRepository(), uow.EventBus())
		var err error
		user, err = svc.GetStreak(ctx, userID)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := streakResponse{UserID: user.ID, StreakCount: user.StreakCount}
	if user.LastPickDate != nil {
		formatted := entities.FormatDate(*user.LastPickDate)
		resp.LastPickDate = &formatted
	}

	writeJSON(w, http.StatusOK, resp)
}
