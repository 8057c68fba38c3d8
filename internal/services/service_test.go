package services_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/jakirh/lunchboard/internal/actorctx"
	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/domain/user"
	"github.com/jakirh/lunchboard/internal/notifications"
	"github.com/jakirh/lunchboard/internal/repo/memory"
	"github.com/jakirh/lunchboard/internal/services"
)

// Wednesday morning, well before the default cutoff.
var wednesday = time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *services.Service
	users     *memory.UsersRepo
	lunches   *memory.LunchRepo
	responses *memory.ResponsesRepo
	runs      *memory.RunsRepo
	notifier  *captureNotifier
	now       *time.Time
}

type captureNotifier struct {
	sent []notifications.SendCutoffSummaryInput
	err  error
}

func (n *captureNotifier) SendCutoffSummary(ctx context.Context, in notifications.SendCutoffSummaryInput) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, in)
	return nil
}

func newFixture(t *testing.T, at time.Time) *fixture {
	t.Helper()

	now := at

	f := &fixture{
		users:     memory.NewUsersRepo(),
		lunches:   memory.NewLunchRepo(),
		responses: memory.NewResponsesRepo(),
		runs:      memory.NewRunsRepo(),
		notifier:  &captureNotifier{},
		now:       &now,
	}

	f.svc = services.NewService(f.lunches, f.responses, f.users, f.runs, f.notifier, slog.Default(), services.Config{
		DefaultCutoff: "12:30",
		Location:      time.UTC,
		Now:           func() time.Time { return *f.now },
	})

	return f
}

func (f *fixture) seedUser(t *testing.T, name string, defaultAnswer *string, isAdmin bool) user.User {
	t.Helper()

	return f.users.Seed(user.User{
		Email:           name + "@example.com",
		Name:            name,
		IsAdmin:         isAdmin,
		DefaultResponse: defaultAnswer,
	})
}

func asActor(u user.User) context.Context {
	return actorctx.WithActor(context.Background(), actorctx.Actor{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	})
}

func strPtr(s string) *string { return &s }

func TestEnsureTodayWeekend(t *testing.T) {
	saturday := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	f := newFixture(t, saturday)

	_, err := f.svc.EnsureToday(context.Background())

	if !errors.Is(err, lunch.ErrWeekend) {
		t.Fatalf("expected ErrWeekend, got %v", err)
	}
}

// wrappingLunchStore wraps every error the way a decorating repo would.
type wrappingLunchStore struct {
	*memory.LunchRepo
}

func (s wrappingLunchStore) GetByDate(ctx context.Context, date string) (lunch.DailyLunch, error) {
	d, err := s.LunchRepo.GetByDate(ctx, date)
	if err != nil {
		return d, fmt.Errorf("get %s: %w", date, err)
	}
	return d, nil
}

func TestEnsureTodayTolerateWrappedNotFound(t *testing.T) {
	f := newFixture(t, wednesday)

	svc := services.NewService(wrappingLunchStore{f.lunches}, f.responses, f.users, f.runs, f.notifier, slog.Default(), services.Config{
		DefaultCutoff: "12:30",
		Location:      time.UTC,
		Now:           func() time.Time { return *f.now },
	})

	d, err := svc.EnsureToday(context.Background())
	if err != nil {
		t.Fatalf("wrapped not-found should still create the record, got %v", err)
	}

	if d.Date != "2026-01-07" || !d.Available {
		t.Fatalf("unexpected record: %+v", d)
	}
}

func TestEnsureTodayCreatesRecord(t *testing.T) {
	f := newFixture(t, wednesday)

	d, err := f.svc.EnsureToday(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Date != "2026-01-07" {
		t.Fatalf("expected date 2026-01-07, got %s", d.Date)
	}
	if !d.Available {
		t.Fatal("new record should start available")
	}
	if d.CutoffTime != "12:30" {
		t.Fatalf("expected configured cutoff, got %s", d.CutoffTime)
	}
	if d.AllowLateResponses {
		t.Fatal("late responses should start disabled")
	}
}

func TestEnsureTodayKeepsExistingRecord(t *testing.T) {
	f := newFixture(t, wednesday)

	f.lunches.Seed(lunch.DailyLunch{
		Date:       "2026-01-07",
		Available:  false,
		CutoffTime: "11:00",
	})

	d, err := f.svc.EnsureToday(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Available || d.CutoffTime != "11:00" {
		t.Fatal("existing record must not be replaced")
	}
}

func TestEnsureTodayHolidayCarryOver(t *testing.T) {
	tests := []struct {
		name          string
		prevReason    *string
		prevAvailable bool
		wantAvailable bool
	}{
		{"holiday reason rolls over", strPtr("Diwali Holiday"), false, false},
		{"case insensitive match", strPtr("public HOLIDAY"), false, false},
		{"plain closure does not roll", strPtr("kitchen flooded"), false, true},
		{"available yesterday does not roll", strPtr("holiday"), true, true},
		{"no reason does not roll", nil, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, wednesday)

			f.lunches.Seed(lunch.DailyLunch{
				Date:              "2026-01-06",
				Available:         tc.prevAvailable,
				UnavailableReason: tc.prevReason,
				CutoffTime:        "12:30",
			})

			d, err := f.svc.EnsureToday(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if d.Available != tc.wantAvailable {
				t.Fatalf("available = %v, want %v", d.Available, tc.wantAvailable)
			}

			if !tc.wantAvailable {
				if d.UnavailableReason == nil || *d.UnavailableReason != *tc.prevReason {
					t.Fatal("carried record should inherit yesterday's reason")
				}
			}
		})
	}
}

func TestReconcileSeedsDefaultResponse(t *testing.T) {
	tests := []struct {
		name string
		seed *string
		want response.Answer
	}{
		{"no default seeds no", nil, response.No},
		{"default yes seeds yes", strPtr("yes"), response.Yes},
		{"default no seeds no", strPtr("no"), response.No},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, wednesday)
			u := f.seedUser(t, "priya", tc.seed, false)

			snap, err := f.svc.Reconcile(asActor(u))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if snap.UserResponse == nil {
				t.Fatal("expected a seeded response")
			}
			if snap.UserResponse.Response != tc.want {
				t.Fatalf("seeded %q, want %q", snap.UserResponse.Response, tc.want)
			}
		})
	}
}

func TestReconcileDoesNotOverwriteExistingResponse(t *testing.T) {
	f := newFixture(t, wednesday)
	u := f.seedUser(t, "priya", strPtr("no"), false)

	if _, err := f.responses.Upsert(context.Background(), response.Response{
		UserID: u.ID, UserName: u.Name, Date: "2026-01-07", Response: response.Yes,
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := f.svc.Reconcile(asActor(u))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.UserResponse.Response != response.Yes {
		t.Fatal("reconcile must not overwrite an existing answer")
	}
}

func TestReconcileWeekendReturnsEmptySnapshot(t *testing.T) {
	sunday := time.Date(2026, 1, 11, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, sunday)
	u := f.seedUser(t, "priya", nil, false)

	snap, err := f.svc.Reconcile(asActor(u))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Lunch != nil {
		t.Fatal("weekend snapshot should carry no lunch record")
	}
}

func TestReconcileCounts(t *testing.T) {
	f := newFixture(t, wednesday)

	yes := f.seedUser(t, "yes-person", strPtr("yes"), false)
	f.seedUser(t, "silent-one", nil, false)
	f.seedUser(t, "silent-two", nil, false)

	// the other silent users never reconciled, only the caller gets seeded
	snap, err := f.svc.Reconcile(asActor(yes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Counts.Yes != 1 || snap.Counts.No != 0 || snap.Counts.Unanswered != 2 {
		t.Fatalf("counts = %+v, want yes=1 no=0 unanswered=2", snap.Counts)
	}
}

func TestReconcileBackfillsRenamedUser(t *testing.T) {
	f := newFixture(t, wednesday)
	u := f.seedUser(t, "old-name", nil, false)

	if _, _, err := f.responses.CreateIfAbsent(context.Background(), response.Response{
		UserID: u.ID, UserName: "old-name", Date: "2026-01-07", Response: response.Yes,
	}); err != nil {
		t.Fatal(err)
	}

	newName := "new-name"
	if _, err := f.users.UpdateProfile(context.Background(), u.ID, user.UpdateProfileRequest{Name: &newName}); err != nil {
		t.Fatal(err)
	}

	snap, err := f.svc.Reconcile(asActor(u))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range snap.Responses {
		if r.UserID == u.ID && r.UserName != "new-name" {
			t.Fatalf("expected backfilled name, got %q", r.UserName)
		}
	}
}

func TestSubmitBeforeCutoff(t *testing.T) {
	f := newFixture(t, wednesday)
	u := f.seedUser(t, "priya", nil, false)

	saved, err := f.svc.Submit(asActor(u), response.Yes, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.Response != response.Yes {
		t.Fatalf("saved %q, want yes", saved.Response)
	}
}

func TestSubmitCutoffGate(t *testing.T) {
	afterCutoff := time.Date(2026, 1, 7, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		isAdmin   bool
		allowLate bool
		wantErr   error
	}{
		{"member blocked after cutoff", false, false, lunch.ErrCutoffPassed},
		{"late window lets member through", false, true, nil},
		{"admin always passes", true, false, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, afterCutoff)
			u := f.seedUser(t, "priya", nil, tc.isAdmin)

			f.lunches.Seed(lunch.DailyLunch{
				Date:               "2026-01-07",
				Available:          true,
				CutoffTime:         "12:30",
				AllowLateResponses: tc.allowLate,
			})

			_, err := f.svc.Submit(asActor(u), response.No, false)

			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSubmitSetAsDefault(t *testing.T) {
	f := newFixture(t, wednesday)
	u := f.seedUser(t, "priya", nil, false)

	if _, err := f.svc.Submit(asActor(u), response.Yes, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := f.users.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatal(err)
	}

	if updated.DefaultResponse == nil || *updated.DefaultResponse != "yes" {
		t.Fatal("setAsDefault should persist the standing answer")
	}
}

func TestSubmitRequiresActor(t *testing.T) {
	f := newFixture(t, wednesday)

	_, err := f.svc.Submit(context.Background(), response.Yes, false)

	if !errors.Is(err, lunch.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSubmitInvalidAnswer(t *testing.T) {
	f := newFixture(t, wednesday)
	u := f.seedUser(t, "priya", nil, false)

	_, err := f.svc.Submit(asActor(u), response.Answer("maybe"), false)

	if !errors.Is(err, services.ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}
}
