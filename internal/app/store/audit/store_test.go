package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/learnportal/internal/app/store/audit"
	"github.com/dalemusser/learnportal/internal/testutil"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: "42", Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedCredentials, Email: "a@b.co", FailureReason: "invalid credentials"},
		{Category: audit.CategorySupport, EventType: audit.EventContactSubmitted, Email: "a@b.co", Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLogout, UserID: "42", Success: true},
	}
	for i, e := range events {
		e.Timestamp = time.Now().Add(time.Duration(i) * time.Second)
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	got, err := store.GetByUser(ctx, "42", 10)
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetByUser returned %d events, want 2", len(got))
	}
	if got[0].EventType != audit.EventLogout {
		t.Errorf("newest first: got %q", got[0].EventType)
	}

	failed, err := store.FailedLogins(ctx, time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("FailedLogins: %v", err)
	}
	if len(failed) != 1 || failed[0].Email != "a@b.co" {
		t.Errorf("FailedLogins = %+v", failed)
	}

	n, err := store.Count(ctx, audit.QueryFilter{Category: audit.CategorySupport})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestStore_QueryLimitAndOffset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now()
	for i := 0; i < 5; i++ {
		if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: "7", Timestamp: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	page, err := store.Query(ctx, audit.QueryFilter{UserID: "7", Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d events, want 2", len(page))
	}
	if !page[0].Timestamp.After(page[1].Timestamp) {
		t.Error("expected descending timestamps")
	}
}
