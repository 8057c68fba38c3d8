package handlers_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/user"
	"github.com/jakirh/lunchboard/internal/http/handlers"
	"github.com/jakirh/lunchboard/internal/repo/memory"
	"github.com/jakirh/lunchboard/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Wednesday morning before the cutoff.
var testNow = time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc     *services.Service
	users   *memory.UsersRepo
	lunches *memory.LunchRepo
	now     *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	now := testNow

	env := &testEnv{
		users:   memory.NewUsersRepo(),
		lunches: memory.NewLunchRepo(),
		now:     &now,
	}

	env.svc = services.NewService(env.lunches, memory.NewResponsesRepo(), env.users, memory.NewRunsRepo(), nil, slog.Default(), services.Config{
		DefaultCutoff: "12:30",
		Location:      time.UTC,
		Now:           func() time.Time { return *env.now },
	})

	return env
}

// actAs fakes what the auth middleware does: stashes the actor on the
// request context.
func actAs(u user.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorctx.Actor{UserID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
		c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func TestTodayReturnsSnapshotWithETag(t *testing.T) {
	env := newTestEnv(t)
	u := env.users.Seed(user.User{Email: "p@example.com", Name: "priya"})

	h := handlers.NewLunchHandler(env.svc)

	r := gin.New()
	r.GET("/lunch/today", actAs(u), h.Today)

	req := httptest.NewRequest(http.MethodGet, "/lunch/today", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag header")
	}

	var snap services.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if snap.Lunch == nil || snap.Lunch.Date != "2026-01-07" {
		t.Fatalf("unexpected snapshot lunch: %+v", snap.Lunch)
	}
	if snap.UserResponse == nil || snap.UserResponse.Response != "no" {
		t.Fatalf("expected seeded no response, got %+v", snap.UserResponse)
	}

	// a second conditional request with the same state is a 304
	req = httptest.NewRequest(http.MethodGet, "/lunch/today", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", w.Code)
	}
}

func TestSubmitEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		at         time.Time
		allowLate  bool
		wantStatus int
	}{
		{"valid submit", `{"response":"yes"}`, testNow, false, http.StatusOK},
		{"invalid answer", `{"response":"maybe"}`, testNow, false, http.StatusBadRequest},
		{"missing answer", `{}`, testNow, false, http.StatusBadRequest},
		{"past cutoff", `{"response":"yes"}`, testNow.Add(4 * time.Hour), false, http.StatusConflict},
		{"past cutoff with late window", `{"response":"yes"}`, testNow.Add(4 * time.Hour), true, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			u := env.users.Seed(user.User{Email: "p@example.com", Name: "priya"})

			env.lunches.Seed(lunch.DailyLunch{
				Date:               "2026-01-07",
				Available:          true,
				CutoffTime:         "12:30",
				AllowLateResponses: tc.allowLate,
			})

			*env.now = tc.at

			h := handlers.NewResponsesHandler(env.svc)

			r := gin.New()
			r.PUT("/lunch/today/response", actAs(u), h.Submit)

			req := httptest.NewRequest(http.MethodPut, "/lunch/today/response", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestAdminEndpointsRejectMembers(t *testing.T) {
	env := newTestEnv(t)
	member := env.users.Seed(user.User{Email: "p@example.com", Name: "priya"})

	h := handlers.NewAdminHandler(env.svc)

	r := gin.New()
	r.PUT("/admin/lunch/availability", actAs(member), h.SetAvailability)

	req := httptest.NewRequest(http.MethodPut, "/admin/lunch/availability", bytes.NewBufferString(`{"available":false}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// the service gate itself answers 403 even without router middleware
	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403, body=%s", w.Code, w.Body.String())
	}
}

func TestAdminSetAvailability(t *testing.T) {
	env := newTestEnv(t)
	admin := env.users.Seed(user.User{Email: "a@example.com", Name: "boss", IsAdmin: true})

	h := handlers.NewAdminHandler(env.svc)

	r := gin.New()
	r.PUT("/admin/lunch/availability", actAs(admin), h.SetAvailability)

	body := `{"available":false,"reason":"  "}`
	req := httptest.NewRequest(http.MethodPut, "/admin/lunch/availability", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Lunch lunch.DailyLunch `json:"lunch"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.Lunch.Available {
		t.Fatal("lunch should be unavailable")
	}
	if resp.Lunch.UnavailableReason == nil || *resp.Lunch.UnavailableReason != "no reason" {
		t.Fatalf("blank reason should normalize to \"no reason\", got %v", resp.Lunch.UnavailableReason)
	}
}
