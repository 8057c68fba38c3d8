package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jakirh/lunchboard/internal/domain/lunch"
	"github.com/jakirh/lunchboard/internal/domain/response"
	"github.com/jakirh/lunchboard/internal/domain/run"
)

func TestFinalizeWeekendSkips(t *testing.T) {
	saturday := time.Date(2026, 1, 10, 13, 0, 0, 0, time.UTC)
	f := newFixture(t, saturday)

	result, err := f.svc.Finalize(context.Background(), "schedule")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Skipped {
		t.Fatal("weekend run should be a skip")
	}
	if len(f.runs.All()) != 0 {
		t.Fatal("a skipped run should not hit the audit trail")
	}
}

func TestFinalizeNoRecordIs404(t *testing.T) {
	f := newFixture(t, wednesday)

	_, err := f.svc.Finalize(context.Background(), "http")

	if !errors.Is(err, lunch.ErrNoLunchToday) {
		t.Fatalf("expected ErrNoLunchToday, got %v", err)
	}
}

func TestFinalizeUnavailableDaySkips(t *testing.T) {
	f := newFixture(t, wednesday)
	f.seedUser(t, "priya", nil, false)

	f.lunches.Seed(lunch.DailyLunch{
		Date:              "2026-01-07",
		Available:         false,
		UnavailableReason: strPtr("holiday"),
		CutoffTime:        "12:30",
	})

	result, err := f.svc.Finalize(context.Background(), "schedule")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Skipped {
		t.Fatal("unavailable day should be a skip")
	}

	if _, err := f.responses.Get(context.Background(), "anything", "2026-01-07"); !errors.Is(err, response.ErrNotFound) {
		t.Fatal("skip must not create responses")
	}
}

func TestFinalizeFillsMissingResponses(t *testing.T) {
	f := newFixture(t, wednesday)

	answered := f.seedUser(t, "answered", nil, false)
	silentYes := f.seedUser(t, "silent-yes", strPtr("yes"), false)
	silentNone := f.seedUser(t, "silent-none", nil, false)

	f.lunches.Seed(lunch.DailyLunch{
		Date:               "2026-01-07",
		Available:          true,
		CutoffTime:         "12:30",
		AllowLateResponses: true,
	})

	if _, err := f.svc.Submit(asActor(answered), response.No, false); err != nil {
		t.Fatal(err)
	}

	result, err := f.svc.Finalize(context.Background(), "schedule")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Processed != 2 {
		t.Fatalf("processed = %d, want 2", result.Processed)
	}
	if result.Total != 3 {
		t.Fatalf("total = %d, want 3", result.Total)
	}

	// defaults applied: yes for the user with a standing yes, no otherwise
	got, err := f.responses.Get(context.Background(), silentYes.ID, "2026-01-07")
	if err != nil {
		t.Fatal(err)
	}
	if got.Response != response.Yes {
		t.Fatalf("silent-yes got %q, want yes", got.Response)
	}

	got, err = f.responses.Get(context.Background(), silentNone.ID, "2026-01-07")
	if err != nil {
		t.Fatal(err)
	}
	if got.Response != response.No {
		t.Fatalf("silent-none got %q, want no", got.Response)
	}

	// late window closed
	d, err := f.lunches.GetByDate(context.Background(), "2026-01-07")
	if err != nil {
		t.Fatal(err)
	}
	if d.AllowLateResponses {
		t.Fatal("finalize must turn off late responses")
	}

	if result.Counts.Yes != 1 || result.Counts.No != 2 || result.Counts.Unanswered != 0 {
		t.Fatalf("counts = %+v, want yes=1 no=2 unanswered=0", result.Counts)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	f := newFixture(t, wednesday)
	f.seedUser(t, "priya", nil, false)

	f.lunches.Seed(lunch.DailyLunch{
		Date:       "2026-01-07",
		Available:  true,
		CutoffTime: "12:30",
	})

	first, err := f.svc.Finalize(context.Background(), "schedule")
	if err != nil {
		t.Fatal(err)
	}
	if first.Processed != 1 {
		t.Fatalf("first run processed = %d, want 1", first.Processed)
	}

	second, err := f.svc.Finalize(context.Background(), "http")
	if err != nil {
		t.Fatal(err)
	}
	if second.Processed != 0 {
		t.Fatalf("second run processed = %d, want 0", second.Processed)
	}
}

func TestFinalizeRecordsRunAndNotifies(t *testing.T) {
	f := newFixture(t, wednesday)
	f.seedUser(t, "priya", nil, false)

	f.lunches.Seed(lunch.DailyLunch{
		Date:       "2026-01-07",
		Available:  true,
		CutoffTime: "12:30",
	})

	if _, err := f.svc.Finalize(context.Background(), "schedule"); err != nil {
		t.Fatal(err)
	}

	runs := f.runs.All()
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Status != run.StatusDone {
		t.Fatalf("run status = %s, want done", runs[0].Status)
	}
	if runs[0].TriggeredBy != "schedule" {
		t.Fatalf("triggered_by = %s, want schedule", runs[0].TriggeredBy)
	}
	if runs[0].Processed != 1 || runs[0].Total != 1 {
		t.Fatalf("run recorded %d/%d, want 1/1", runs[0].Processed, runs[0].Total)
	}

	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected one cutoff summary, got %d", len(f.notifier.sent))
	}
	if f.notifier.sent[0].Date != "2026-01-07" {
		t.Fatalf("summary date = %s", f.notifier.sent[0].Date)
	}
}

func TestFinalizeNotifierFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(t, wednesday)
	f.seedUser(t, "priya", nil, false)
	f.notifier.err = errors.New("provider down")

	f.lunches.Seed(lunch.DailyLunch{
		Date:       "2026-01-07",
		Available:  true,
		CutoffTime: "12:30",
	})

	if _, err := f.svc.Finalize(context.Background(), "schedule"); err != nil {
		t.Fatalf("notifier failure must not fail the run: %v", err)
	}
}
