package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-review/folio-backend/internal/auth"
	"github.com/folio-review/folio-backend/internal/portfolios/domain"
	"github.com/folio-review/folio-backend/internal/portfolios/service"
)

type stubLifecycle struct {
	portfolio *domain.Portfolio
	err       error

	gotActor domain.Actor
	gotID    string
	gotInput domain.TransitionInput
	gotDraft domain.DraftContent
}

func (s *stubLifecycle) Status(_ context.Context, a domain.Actor) (*domain.Portfolio, domain.StatusDescriptor, error) {
	s.gotActor = a
	if s.err != nil {
		return nil, domain.StatusDescriptor{}, s.err
	}
	return s.portfolio, domain.ResolveStatus(s.portfolio), nil
}

func (s *stubLifecycle) SaveDraft(_ context.Context, a domain.Actor, d domain.DraftContent) (*domain.Portfolio, error) {
	s.gotActor, s.gotDraft = a, d
	return s.portfolio, s.err
}

func (s *stubLifecycle) ClearAll(_ context.Context, a domain.Actor) (*domain.Portfolio, error) {
	s.gotActor = a
	return s.portfolio, s.err
}

func (s *stubLifecycle) Submit(_ context.Context, a domain.Actor) (*domain.Portfolio, error) {
	s.gotActor = a
	return s.portfolio, s.err
}

func (s *stubLifecycle) SelfTransition(_ context.Context, a domain.Actor, action domain.Action) (*domain.Portfolio, error) {
	s.gotActor, s.gotInput = a, domain.TransitionInput{Action: action}
	return s.portfolio, s.err
}

func (s *stubLifecycle) Get(_ context.Context, a domain.Actor, id string) (*domain.Portfolio, error) {
	s.gotActor, s.gotID = a, id
	return s.portfolio, s.err
}

func (s *stubLifecycle) Transition(_ context.Context, a domain.Actor, id string, in domain.TransitionInput) (*domain.Portfolio, error) {
	s.gotActor, s.gotID, s.gotInput = a, id, in
	return s.portfolio, s.err
}

type stubPublisher struct {
	settings domain.AdminSettings
	schedule domain.Schedule
	batch    *service.BatchResult
	err      error
	trigger  string
}

func (s *stubPublisher) Settings(context.Context) (domain.AdminSettings, error) {
	return s.settings, s.err
}

func (s *stubPublisher) UpdateSettings(_ context.Context, _ domain.Actor, in domain.AdminSettings) (domain.AdminSettings, error) {
	if s.err != nil {
		return domain.AdminSettings{}, s.err
	}
	s.settings = in
	return in, nil
}

func (s *stubPublisher) Preview(context.Context) (domain.Schedule, error) {
	return s.schedule, s.err
}

func (s *stubPublisher) RunBatch(_ context.Context, trigger string) (*service.BatchResult, error) {
	s.trigger = trigger
	return s.batch, s.err
}

func setupRouter(lc Lifecycle, pub Publisher, userID string, admin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(auth.CtxUserDBID, userID)
			c.Set(auth.CtxIsAdmin, admin)
		}
		c.Next()
	})

	h := New(lc, pub, nil)
	h.Register(api)
	adminGroup := api.Group("/admin")
	adminGroup.Use(auth.RequireAdmin())
	h.RegisterAdmin(adminGroup)
	h.RegisterAdminAliases(api.Group("/portfolio", auth.RequireAdmin()))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func pendingPortfolio() *domain.Portfolio {
	return &domain.Portfolio{ID: "p1", UserID: "u1", Status: domain.StatusPending}
}

func TestGetStatus(t *testing.T) {
	t.Run("no portfolio yields the null-state descriptor", func(t *testing.T) {
		lc := &stubLifecycle{}
		rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodGet, "/api/v1/portfolio-status", "")

		require.Equal(t, http.StatusOK, rr.Code)
		status := decode(t, rr)["status"].(map[string]interface{})
		assert.Equal(t, "none", status["state"])
		assert.Equal(t, domain.BadgeDraft, status["statusBadge"])
		assert.Equal(t, true, status["canSubmit"])
		assert.Equal(t, false, status["canPreview"])
		assert.Equal(t, "u1", lc.gotActor.UserID)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		lc := &stubLifecycle{err: domain.ErrUnauthenticated}
		rr := do(setupRouter(lc, &stubPublisher{}, "", false), http.MethodGet, "/api/v1/portfolio-status", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("store failure hides details", func(t *testing.T) {
		lc := &stubLifecycle{err: domain.ErrStoreFailure}
		rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodGet, "/api/v1/portfolio-status", "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, false, decode(t, rr)["ok"])
	})
}

func TestPatchStatus(t *testing.T) {
	t.Run("withdraw", func(t *testing.T) {
		lc := &stubLifecycle{portfolio: &domain.Portfolio{ID: "p1", UserID: "u1", Status: domain.StatusDraft}}
		rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPatch, "/api/v1/portfolio-status", `{"action":"withdraw"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.ActionWithdraw, lc.gotInput.Action)
		status := decode(t, rr)["status"].(map[string]interface{})
		assert.Equal(t, "draft", status["state"])
	})

	t.Run("unknown action", func(t *testing.T) {
		lc := &stubLifecycle{}
		rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPatch, "/api/v1/portfolio-status", `{"action":"approve"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid transition carries states", func(t *testing.T) {
		lc := &stubLifecycle{err: &domain.TransitionError{From: domain.StateDraft, Action: domain.ActionWithdraw}}
		rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPatch, "/api/v1/portfolio-status", `{"action":"withdraw"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "draft", body["current_state"])
		assert.Equal(t, "withdraw", body["action"])
	})

	t.Run("not found", func(t *testing.T) {
		lc := &stubLifecycle{err: domain.ErrNotFound}
		rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPatch, "/api/v1/portfolio-status", `{"action":"resubmit"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		lc := &stubLifecycle{err: domain.ErrConflict}
		rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPatch, "/api/v1/portfolio-status", `{"action":"resubmit"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestSubmit_ValidationReason(t *testing.T) {
	lc := &stubLifecycle{err: &domain.ValidationError{Reason: "title is required"}}
	rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPost, "/api/v1/portfolio/submit", "")

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "title is required", decode(t, rr)["reason"])
}

func TestSaveDraft(t *testing.T) {
	lc := &stubLifecycle{portfolio: &domain.Portfolio{ID: "p1", UserID: "u1", Status: domain.StatusDraft}}
	rr := do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPut, "/api/v1/portfolio",
		`{"title":"Posters","images":["a.png"],"tags":["print"]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Posters", lc.gotDraft.Title)
	assert.Equal(t, []string{"a.png"}, lc.gotDraft.Images)

	rr = do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPut, "/api/v1/portfolio", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	lc.err = domain.ErrPortfolioExists
	rr = do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPut, "/api/v1/portfolio", `{"title":"x"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	lc := &stubLifecycle{portfolio: pendingPortfolio()}
	r := setupRouter(lc, &stubPublisher{}, "u1", false)

	for _, path := range []string{
		"/api/v1/admin/portfolios/p1/approve",
		"/api/v1/admin/portfolios/p1/publish",
		"/api/v1/admin/portfolios/p1/unpublish",
		"/api/v1/admin/portfolios/p1/delete",
		"/api/v1/admin/portfolios/p1/restore",
		"/api/v1/admin/publish-batch",
	} {
		rr := do(r, http.MethodPost, path, "")
		assert.Equal(t, http.StatusForbidden, rr.Code, path)
	}
	assert.Empty(t, lc.gotID)
}

func TestAdminTransitions(t *testing.T) {
	cases := []struct {
		path   string
		body   string
		action domain.Action
		reason string
	}{
		{"/api/v1/admin/portfolios/p1/approve", "", domain.ActionApprove, ""},
		{"/api/v1/admin/portfolios/p1/decline", `{"reason":"  low resolution "}`, domain.ActionDecline, "low resolution"},
		{"/api/v1/admin/portfolios/p1/publish", "", domain.ActionPublish, ""},
		{"/api/v1/admin/portfolios/p1/unpublish", "", domain.ActionUnpublish, ""},
		{"/api/v1/admin/portfolios/p1/delete", "", domain.ActionDelete, ""},
		{"/api/v1/admin/portfolios/p1/restore", "", domain.ActionRestore, ""},
	}
	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			lc := &stubLifecycle{portfolio: pendingPortfolio()}
			rr := do(setupRouter(lc, &stubPublisher{}, "admin-1", true), http.MethodPost, tc.path, tc.body)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "p1", lc.gotID)
			assert.Equal(t, tc.action, lc.gotInput.Action)
			assert.Equal(t, tc.reason, lc.gotInput.Reason)
			assert.True(t, lc.gotActor.IsAdmin)
		})
	}
}

func TestAdminTransitions_PortfolioPaths(t *testing.T) {
	cases := []struct {
		path   string
		body   string
		action domain.Action
	}{
		{"/api/v1/portfolio/p1/approve", "", domain.ActionApprove},
		{"/api/v1/portfolio/p1/decline", `{"reason":"blurry"}`, domain.ActionDecline},
		{"/api/v1/portfolio/p1/publish", "", domain.ActionPublish},
		{"/api/v1/portfolio/p1/unpublish", "", domain.ActionUnpublish},
	}
	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			lc := &stubLifecycle{portfolio: pendingPortfolio()}
			rr := do(setupRouter(lc, &stubPublisher{}, "admin-1", true), http.MethodPost, tc.path, tc.body)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "p1", lc.gotID)
			assert.Equal(t, tc.action, lc.gotInput.Action)

			lc = &stubLifecycle{portfolio: pendingPortfolio()}
			rr = do(setupRouter(lc, &stubPublisher{}, "u1", false), http.MethodPost, tc.path, tc.body)
			assert.Equal(t, http.StatusForbidden, rr.Code)
			assert.Empty(t, lc.gotID)
		})
	}
}

func TestDecline_RequiresBody(t *testing.T) {
	lc := &stubLifecycle{portfolio: pendingPortfolio()}
	rr := do(setupRouter(lc, &stubPublisher{}, "admin-1", true), http.MethodPost, "/api/v1/admin/portfolios/p1/decline", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, lc.gotID)
}

func TestPublishBatch(t *testing.T) {
	pub := &stubPublisher{batch: &service.BatchResult{
		Published: 1,
		Failed:    1,
		Results: []service.PublishResult{
			{PortfolioID: "a", Published: true},
			{PortfolioID: "b", Error: "store failure"},
		},
	}}
	rr := do(setupRouter(&stubLifecycle{}, pub, "admin-1", true), http.MethodPost, "/api/v1/admin/publish-batch", "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, float64(1), body["published"])
	assert.Len(t, body["results"], 2)
	assert.Equal(t, service.TriggerManual, pub.trigger)

	pub.err = domain.ErrBatchInProgress
	rr = do(setupRouter(&stubLifecycle{}, pub, "admin-1", true), http.MethodPost, "/api/v1/admin/publish-batch", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSettingsRoutes(t *testing.T) {
	pub := &stubPublisher{settings: domain.DefaultSettings()}
	r := setupRouter(&stubLifecycle{}, pub, "admin-1", true)

	rr := do(r, http.MethodGet, "/api/v1/admin/settings", "")
	require.Equal(t, http.StatusOK, rr.Code)
	settings := decode(t, rr)["settings"].(map[string]interface{})
	assert.Equal(t, float64(5), settings["weekly_publish_limit"])

	rr = do(r, http.MethodPut, "/api/v1/admin/settings", `{"weekly_publish_limit":10,"publish_strategy":"newest_first"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10, pub.settings.WeeklyPublishLimit)
	assert.Equal(t, domain.StrategyNewestFirst, pub.settings.PublishStrategy)

	pub.err = &domain.ValidationError{Reason: "weekly_publish_limit failed max=50"}
	rr = do(r, http.MethodPut, "/api/v1/admin/settings", `{"weekly_publish_limit":99,"publish_strategy":"manual"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPublishQueue(t *testing.T) {
	pub := &stubPublisher{schedule: domain.Schedule{Strategy: domain.StrategyManual, Limit: 5}}
	rr := do(setupRouter(&stubLifecycle{}, pub, "admin-1", true), http.MethodGet, "/api/v1/admin/publish-queue", "")

	require.Equal(t, http.StatusOK, rr.Code)
	schedule := decode(t, rr)["schedule"].(map[string]interface{})
	assert.Equal(t, "manual", schedule["publish_strategy"])
	assert.Nil(t, schedule["next_run_at"])
}
