package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phlock/api"
	"phlock/application"
	"phlock/config"
	"phlock/domain/entities"
	"phlock/infrastructure"
	"phlock/repository/testutil"
)

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type rosterPayload struct {
	OwnerID uuid.UUID `json:"ownerId"`
	Slots   []struct {
		Position           int        `json:"position"`
		CuratorID          *uuid.UUID `json:"curatorId"`
		CuratorPostedToday bool       `json:"curatorPostedToday"`
	} `json:"slots"`
	Pending []struct {
		Position          int        `json:"position"`
		OutgoingCuratorID *uuid.UUID `json:"outgoingCuratorId"`
		IncomingCuratorID uuid.UUID  `json:"incomingCuratorId"`
		EffectiveDate     string     `json:"effectiveDate"`
	} `json:"pendingSwaps"`
}

func TestServer_Endpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Set up test config
	config.SetTestConfig(config.NewTestConfig())
	defer config.ResetConfig()

	// Setup test database
	testDB := testutil.SetupTestDatabase(t)

	uowFactory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())
	worker := application.NewDayBoundaryWorker(uowFactory)
	server := api.NewServer(config.Get(), uowFactory, worker)
	router := server.Router()

	ctx := context.Background()

	do := func(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
		t.Helper()
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(t *testing.T, rec *httptest.ResponseRecorder, v any) {
		t.Helper()
		require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
	}

	getRoster := func(t *testing.T, ownerID uuid.UUID) rosterPayload {
		t.Helper()
		rec := do(t, http.MethodGet, "/v1/users/"+ownerID.String()+"/roster", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var roster rosterPayload
		decode(t, rec, &roster)
		return roster
	}

	seedRoster := func(t *testing.T, ownerID uuid.UUID, position int, curatorID uuid.UUID) {
		t.Helper()
		require.NoError(t, application.RunInUnitOfWork(ctx, uowFactory, func(uow application.UnitOfWork) error {
			if _, err := uow.UserRepository().GetOrCreate(ctx, ownerID); err != nil {
				return err
			}
			_, err := uow.RosterRepository().SetSlot(ctx, ownerID, position, &curatorID)
			return err
		}))
	}

	ownerA := uuid.New()
	ownerB := uuid.New()
	ownerC := uuid.New()
	ownerD := uuid.New()
	ownerE := uuid.New()
	curatorX := uuid.New()
	curatorY := uuid.New()
	curatorZ := uuid.New()
	curatorP := uuid.New()
	curatorQ := uuid.New()

	today := entities.FormatDate(testutil.Day(0))
	tomorrow := entities.FormatDate(testutil.Day(1))

	t.Run("health check responds ok", func(t *testing.T) {
		rec := do(t, http.MethodGet, "/healthz", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		decode(t, rec, &body)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "curation-engine", body["service"])
	})

	t.Run("roster for a new owner is five empty slots", func(t *testing.T) {
		roster := getRoster(t, ownerA)

		assert.Equal(t, ownerA, roster.OwnerID)
		require.Len(t, roster.Slots, entities.RosterSize)
		for i, slot := range roster.Slots {
			assert.Equal(t, i+1, slot.Position)
			assert.Nil(t, slot.CuratorID)
		}
		assert.Empty(t, roster.Pending)
	})

	t.Run("pick is recorded once per day", func(t *testing.T) {
		rec := do(t, http.MethodPost, "/v1/users/"+curatorX.String()+"/picks", map[string]string{
			"itemRef": "track:river",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var pick struct {
			PickDate    string `json:"pickDate"`
			ItemRef     string `json:"itemRef"`
			StreakCount int    `json:"streakCount"`
			Milestone   bool   `json:"milestone"`
		}
		decode(t, rec, &pick)
		assert.Equal(t, today, pick.PickDate)
		assert.Equal(t, "track:river", pick.ItemRef)
		assert.Equal(t, 1, pick.StreakCount)
		assert.False(t, pick.Milestone)

		// A second pick the same day is a conflict, not a new pick.
		rec = do(t, http.MethodPost, "/v1/users/"+curatorX.String()+"/picks", map[string]string{
			"itemRef": "track:other",
		})
		require.Equal(t, http.StatusConflict, rec.Code)

		var apiErr errorPayload
		decode(t, rec, &apiErr)
		assert.Equal(t, "ALREADY_POSTED_TODAY", apiErr.Code)
	})

	t.Run("swap into an empty slot applies immediately", func(t *testing.T) {
		rec := do(t, http.MethodPost, "/v1/users/"+ownerA.String()+"/roster/swaps", map[string]any{
			"position":     1,
			"newCuratorId": curatorY,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var swap struct {
			Status        string `json:"status"`
			Position      int    `json:"position"`
			EffectiveDate string `json:"effectiveDate"`
		}
		decode(t, rec, &swap)
		assert.Equal(t, "applied-immediate", swap.Status)
		assert.Equal(t, 1, swap.Position)
		assert.Equal(t, today, swap.EffectiveDate)

		roster := getRoster(t, ownerA)
		require.NotNil(t, roster.Slots[0].CuratorID)
		assert.Equal(t, curatorY, *roster.Slots[0].CuratorID)
	})

	t.Run("second swap the same day exhausts the quota", func(t *testing.T) {
		rec := do(t, http.MethodPost, "/v1/users/"+ownerA.String()+"/roster/swaps", map[string]any{
			"position":     2,
			"newCuratorId": uuid.New(),
		})
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		var apiErr errorPayload
		decode(t, rec, &apiErr)
		assert.Equal(t, "SWAP_QUOTA_EXHAUSTED", apiErr.Code)

		// The rejected request must not have touched the roster.
		roster := getRoster(t, ownerA)
		assert.Nil(t, roster.Slots[1].CuratorID)
	})

	t.Run("swap defers when the occupant posted today", func(t *testing.T) {
		seedRoster(t, ownerB, 2, curatorX)

		rec := do(t, http.MethodPost, "/v1/users/"+ownerB.String()+"/roster/swaps", map[string]any{
			"position":     2,
			"newCuratorId": curatorZ,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var swap struct {
			Status        string `json:"status"`
			EffectiveDate string `json:"effectiveDate"`
		}
		decode(t, rec, &swap)
		assert.Equal(t, "deferred", swap.Status)
		assert.Equal(t, tomorrow, swap.EffectiveDate)

		roster := getRoster(t, ownerB)
		require.NotNil(t, roster.Slots[1].CuratorID)
		assert.Equal(t, curatorX, *roster.Slots[1].CuratorID)
		assert.True(t, roster.Slots[1].CuratorPostedToday)
		require.Len(t, roster.Pending, 1)
		assert.Equal(t, curatorZ, roster.Pending[0].IncomingCuratorID)
		assert.Equal(t, tomorrow, roster.Pending[0].EffectiveDate)
	})

	t.Run("cancel withdraws the queued swap", func(t *testing.T) {
		rec := do(t, http.MethodPost, "/v1/users/"+ownerB.String()+"/roster/swaps/2/cancel", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var cancel struct {
			Status string `json:"status"`
		}
		decode(t, rec, &cancel)
		assert.Equal(t, "cancelled", cancel.Status)

		// Cancelling again is a no-op, not an error.
		rec = do(t, http.MethodPost, "/v1/users/"+ownerB.String()+"/roster/swaps/2/cancel", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &cancel)
		assert.Equal(t, "no-op", cancel.Status)

		roster := getRoster(t, ownerB)
		assert.Empty(t, roster.Pending)
		require.NotNil(t, roster.Slots[1].CuratorID)
		assert.Equal(t, curatorX, *roster.Slots[1].CuratorID)
	})

	t.Run("invalid input is rejected", func(t *testing.T) {
		rec := do(t, http.MethodGet, "/v1/users/not-a-uuid/roster", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var apiErr errorPayload
		decode(t, rec, &apiErr)
		assert.Equal(t, "VALIDATION_FAILED", apiErr.Code)

		// Position outside 1..5 fails before any quota is consumed.
		rec = do(t, http.MethodPost, "/v1/users/"+ownerC.String()+"/roster/swaps", map[string]any{
			"position":     9,
			"newCuratorId": uuid.New(),
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		rec = do(t, http.MethodPost, "/v1/users/"+ownerC.String()+"/picks", map[string]string{
			"itemRef": "   ",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		req := httptest.NewRequest(http.MethodPost, "/v1/users/"+ownerC.String()+"/roster/swaps", strings.NewReader("{not json"))
		malformed := httptest.NewRecorder()
		router.ServeHTTP(malformed, req)
		require.Equal(t, http.StatusBadRequest, malformed.Code)
	})

	t.Run("playlist reflects curator picks for the date", func(t *testing.T) {
		seedRoster(t, ownerD, 3, curatorX)

		rec := do(t, http.MethodGet, "/v1/users/"+ownerD.String()+"/playlist", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var playlist struct {
			Date    string `json:"date"`
			Entries []struct {
				Position  int        `json:"position"`
				CuratorID *uuid.UUID `json:"curatorId"`
				ItemRef   *string    `json:"itemRef"`
			} `json:"entries"`
		}
		decode(t, rec, &playlist)
		assert.Equal(t, today, playlist.Date)
		require.Len(t, playlist.Entries, entities.RosterSize)
		assert.Nil(t, playlist.Entries[0].ItemRef)
		require.NotNil(t, playlist.Entries[2].CuratorID)
		assert.Equal(t, curatorX, *playlist.Entries[2].CuratorID)
		require.NotNil(t, playlist.Entries[2].ItemRef)
		assert.Equal(t, "track:river", *playlist.Entries[2].ItemRef)

		// Yesterday the curator had not posted yet.
		rec = do(t, http.MethodGet, "/v1/users/"+ownerD.String()+"/playlist?date="+entities.FormatDate(testutil.Day(-1)), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &playlist)
		assert.Nil(t, playlist.Entries[2].ItemRef)

		rec = do(t, http.MethodGet, "/v1/users/"+ownerD.String()+"/playlist?date=garbage", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("social currency follows roster membership", func(t *testing.T) {
		rec := do(t, http.MethodGet, "/v1/users/"+curatorY.String()+"/social-currency", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var count struct {
			CuratorID uuid.UUID `json:"curatorId"`
			SlotCount int       `json:"slotCount"`
		}
		decode(t, rec, &count)
		assert.Equal(t, curatorY, count.CuratorID)
		assert.Equal(t, 1, count.SlotCount)

		// curatorX sits on two rosters by now.
		rec = do(t, http.MethodGet, "/v1/users/"+curatorX.String()+"/social-currency", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &count)
		assert.Equal(t, 2, count.SlotCount)

		rec = do(t, http.MethodGet, "/v1/users/"+curatorY.String()+"/social-currency/audit", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var audit struct {
			Entries []struct {
				OwnerID  uuid.UUID `json:"ownerId"`
				Position int       `json:"position"`
				Delta    int       `json:"delta"`
			} `json:"entries"`
		}
		decode(t, rec, &audit)
		require.Len(t, audit.Entries, 1)
		assert.Equal(t, ownerA, audit.Entries[0].OwnerID)
		assert.Equal(t, 1, audit.Entries[0].Position)
		assert.Equal(t, 1, audit.Entries[0].Delta)

		// The recount agrees with the stored counter.
		rec = do(t, http.MethodGet, "/v1/users/"+curatorY.String()+"/social-currency/verify", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &count)
		assert.Equal(t, 1, count.SlotCount)
	})

	t.Run("day boundary endpoint applies due swaps", func(t *testing.T) {
		rec := do(t, http.MethodPost, "/v1/users/"+curatorP.String()+"/picks", map[string]string{
			"itemRef": "track:ember",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		seedRoster(t, ownerE, 4, curatorP)

		rec = do(t, http.MethodPost, "/v1/users/"+ownerE.String()+"/roster/swaps", map[string]any{
			"position":     4,
			"newCuratorId": curatorQ,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		// Today's boundary has nothing due; the queued swap waits for
		// tomorrow.
		rec = do(t, http.MethodPost, "/v1/ops/day-boundary", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var run struct {
			Date    string `json:"date"`
			Applied int    `json:"applied"`
			Skipped int    `json:"skipped"`
			Failed  int    `json:"failed"`
		}
		decode(t, rec, &run)
		assert.Equal(t, today, run.Date)
		assert.Equal(t, 0, run.Applied)

		rec = do(t, http.MethodPost, "/v1/ops/day-boundary", map[string]string{
			"date": tomorrow,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &run)
		assert.Equal(t, tomorrow, run.Date)
		assert.Equal(t, 1, run.Applied)
		assert.Equal(t, 0, run.Failed)

		roster := getRoster(t, ownerE)
		require.NotNil(t, roster.Slots[3].CuratorID)
		assert.Equal(t, curatorQ, *roster.Slots[3].CuratorID)

		rec = do(t, http.MethodGet, "/v1/users/"+curatorP.String()+"/social-currency", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var count struct {
			SlotCount int `json:"slotCount"`
		}
		decode(t, rec, &count)
		assert.Equal(t, 0, count.SlotCount)
	})
}

func TestServer_RateLimiting(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Set up test config
	config.SetTestConfig(config.NewTestConfig())
	defer config.ResetConfig()

	// Setup test database
	testDB := testutil.SetupTestDatabase(t)

	uowFactory := infrastructure.NewUnitOfWorkFactory(testDB.DB, infrastructure.NewNoopEventPublisher())

	cfg := config.NewTestConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	server := api.NewServer(cfg, uowFactory, application.NewDayBoundaryWorker(uowFactory))
	router := server.Router()

	userID := uuid.New()
	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	// The single burst token admits the first request.
	rec := get("/v1/users/" + userID.String() + "/streak")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get("/v1/users/" + userID.String() + "/streak")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	var apiErr errorPayload
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, "RATE_LIMITED", apiErr.Code)

	// The health check sits outside the limited subtree.
	for i := 0; i < 3; i++ {
		rec = get("/healthz")
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestServer_ShutdownStopsCleanly(t *testing.T) {
	t.Parallel()

	// Shutdown before Start must still stop the limiter's cleanup
	// goroutine.
	server := api.NewServer(config.NewTestConfig(), &idleFactory{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
}

// idleFactory satisfies the factory interface for tests that never open a
// unit of work.
type idleFactory struct{}

func (f *idleFactory) Create() application.UnitOfWork { return nil }
