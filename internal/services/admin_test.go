package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
)

func TestAdminGateRejectsMembers(t *testing.T) {
	f := newFixture(t, wednesday)
	member := f.seedUser(t, "priya", nil, false)

	if _, err := f.svc.SetAvailability(asActor(member), lunch.SetAvailabilityRequest{Available: false}); !errors.Is(err, lunch.ErrForbidden) {
		t.Fatalf("SetAvailability: expected ErrForbidden, got %v", err)
	}

	if _, err := f.svc.SetLateResponses(asActor(member), true); !errors.Is(err, lunch.ErrForbidden) {
		t.Fatalf("SetLateResponses: expected ErrForbidden, got %v", err)
	}

	if _, err := f.svc.BulkResolve(asActor(member), response.No); !errors.Is(err, lunch.ErrForbidden) {
		t.Fatalf("BulkResolve: expected ErrForbidden, got %v", err)
	}
}

func TestSetAvailabilityReasonHandling(t *testing.T) {
	tests := []struct {
		name       string
		reason     *string
		seedReason *string
		want       *string
	}{
		{"explicit reason stored", strPtr("team offsite"), nil, strPtr("team offsite")},
		{"blank reason normalized", strPtr("   "), nil, strPtr("no reason")},
		{"nil reason leaves stored value", nil, strPtr("kept"), strPtr("kept")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, wednesday)
			admin := f.seedUser(t, "boss", nil, true)

			f.lunches.Seed(lunch.DailyLunch{
				Date:              "2026-01-07",
				Available:         true,
				UnavailableReason: tc.seedReason,
				CutoffTime:        "12:30",
			})

			updated, err := f.svc.SetAvailability(asActor(admin), lunch.SetAvailabilityRequest{
				Available: false,
				Reason:    tc.reason,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if updated.Available {
				t.Fatal("record should be unavailable")
			}

			switch {
			case tc.want == nil && updated.UnavailableReason != nil:
				t.Fatalf("expected no reason, got %q", *updated.UnavailableReason)
			case tc.want != nil && (updated.UnavailableReason == nil || *updated.UnavailableReason != *tc.want):
				t.Fatalf("reason = %v, want %q", updated.UnavailableReason, *tc.want)
			}
		})
	}
}

func TestSetAvailabilityCreatesRecordFirst(t *testing.T) {
	f := newFixture(t, wednesday)
	admin := f.seedUser(t, "boss", nil, true)

	updated, err := f.svc.SetAvailability(asActor(admin), lunch.SetAvailabilityRequest{Available: false, Reason: strPtr("holiday")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Date != "2026-01-07" || updated.Available {
		t.Fatalf("expected a fresh unavailable record, got %+v", updated)
	}
}

func TestSetLateResponses(t *testing.T) {
	f := newFixture(t, wednesday)
	admin := f.seedUser(t, "boss", nil, true)

	if _, err := f.svc.EnsureToday(asActor(admin)); err != nil {
		t.Fatal(err)
	}

	updated, err := f.svc.SetLateResponses(asActor(admin), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !updated.AllowLateResponses {
		t.Fatal("late responses should be enabled")
	}
}

func TestSetLateResponsesWithoutRecord(t *testing.T) {
	f := newFixture(t, wednesday)
	admin := f.seedUser(t, "boss", nil, true)

	_, err := f.svc.SetLateResponses(asActor(admin), true)
	if !errors.Is(err, lunch.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := f.lunches.GetByDate(asActor(admin), "2026-01-07"); !errors.Is(err, lunch.ErrNotFound) {
		t.Fatal("toggling late responses must not create today's record")
	}
}

func TestBulkResolveOnlyTouchesUnanswered(t *testing.T) {
	f := newFixture(t, wednesday)
	admin := f.seedUser(t, "boss", nil, true)
	answered := f.seedUser(t, "answered", nil, false)
	silent := f.seedUser(t, "silent", nil, false)

	if _, err := f.svc.Submit(asActor(answered), response.Yes, false); err != nil {
		t.Fatal(err)
	}

	result, err := f.svc.BulkResolve(asActor(admin), response.No)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// admin and silent had no response; answered is left alone
	if result.Updated != 2 {
		t.Fatalf("updated = %d, want 2", result.Updated)
	}

	got, err := f.responses.Get(context.Background(), answered.ID, "2026-01-07")
	if err != nil {
		t.Fatal(err)
	}
	if got.Response != response.Yes {
		t.Fatal("existing answer must survive a bulk resolve")
	}

	silentUser, err := f.users.GetByID(context.Background(), silent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if silentUser.DefaultResponse == nil || *silentUser.DefaultResponse != "no" {
		t.Fatal("bulk resolve should set the standing default")
	}
}
