package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/waterorder/internal/adapter/sqlite"
	"github.com/neomorfeo/waterorder/internal/domain"
)

var start = time.Date(2030, 1, 16, 10, 10, 10, 0, time.UTC)

// newTestRepo creates an in-memory SQLite repository for testing.
func newTestRepo(t *testing.T) *sqlite.OrderRepository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustAdd(t *testing.T, repo *sqlite.OrderRepository, farmID string, at time.Time, d time.Duration) domain.Order {
	t.Helper()
	order, err := repo.Add(context.Background(), domain.Candidate{FarmID: farmID, StartDateTime: at, Duration: d})
	if err != nil {
		t.Fatalf("mustAdd failed: %v", err)
	}
	return order
}

func TestAdd_And_Get(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	order := mustAdd(t, repo, "MYFARM", start, 90*time.Minute)
	if order.ID != "MYFARM:20300116101010" {
		t.Errorf("ID = %q, want %q", order.ID, "MYFARM:20300116101010")
	}

	got, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.FarmID != "MYFARM" {
		t.Errorf("FarmID = %q, want %q", got.FarmID, "MYFARM")
	}
	if !got.StartDateTime.Equal(start) {
		t.Errorf("StartDateTime = %v, want %v", got.StartDateTime, start)
	}
	if got.Duration != 90*time.Minute {
		t.Errorf("Duration = %v, want %v", got.Duration, 90*time.Minute)
	}
	if got.Status != domain.StatusRequested {
		t.Errorf("Status = %q, want %q", got.Status, domain.StatusRequested)
	}
}

func TestAdd_Duplicate(t *testing.T) {
	repo := newTestRepo(t)
	mustAdd(t, repo, "a", start, time.Minute)

	_, err := repo.Add(context.Background(), domain.Candidate{FarmID: "a", StartDateTime: start})
	if !errors.Is(err, domain.ErrDuplicateOrder) {
		t.Errorf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestAdd_SameWallClockDifferentOffsets(t *testing.T) {
	repo := newTestRepo(t)
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	a := mustAdd(t, repo, "F", time.Date(2031, 1, 1, 10, 0, 0, 0, plusTwo), time.Hour)
	b := mustAdd(t, repo, "F", time.Date(2031, 1, 1, 10, 0, 0, 0, time.UTC), time.Hour)

	if a.ID != "F:20310101080000" || b.ID != "F:20310101100000" {
		t.Errorf("ids = %q, %q, want F:20310101080000, F:20310101100000", a.ID, b.ID)
	}
}

func TestRemove(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	order := mustAdd(t, repo, "a", start, time.Minute)

	if err := repo.Remove(ctx, order.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := repo.Get(ctx, order.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after Remove, got %v", err)
	}

	err := repo.Remove(ctx, order.ID)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on second Remove, got %v", err)
	}

	mustAdd(t, repo, "a", start, time.Minute)
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "unknown")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.IDKind != domain.IDKindOrder {
		t.Errorf("IDKind = %q, want %q", nf.IDKind, domain.IDKindOrder)
	}
}

func TestList_SortedByStart(t *testing.T) {
	repo := newTestRepo(t)

	mustAdd(t, repo, "a", start.Add(2*time.Hour), time.Minute)
	mustAdd(t, repo, "b", start.Add(500*time.Millisecond), time.Minute)
	mustAdd(t, repo, "c", start, time.Minute)

	orders, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("got %d orders, want 3", len(orders))
	}
	for i, want := range []string{"c", "b", "a"} {
		if orders[i].FarmID != want {
			t.Errorf("orders[%d].FarmID = %q, want %q", i, orders[i].FarmID, want)
		}
	}
}

func TestListByFarm(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustAdd(t, repo, "a", start, time.Minute)
	mustAdd(t, repo, "a", start.Add(time.Hour), time.Minute)
	mustAdd(t, repo, "b", start, time.Minute)

	orders, err := repo.ListByFarm(ctx, "a")
	if err != nil {
		t.Fatalf("ListByFarm failed: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("got %d orders, want 2", len(orders))
	}

	_, err = repo.ListByFarm(ctx, "emptyFarm")
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.IDKind != domain.IDKindFarm {
		t.Errorf("IDKind = %q, want %q", nf.IDKind, domain.IDKindFarm)
	}
}

func TestSetStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	order := mustAdd(t, repo, "a", start, time.Minute)

	updated, err := repo.SetStatus(ctx, order.ID, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Errorf("Status = %q, want %q", updated.Status, domain.StatusInProgress)
	}

	got, _ := repo.Get(ctx, order.ID)
	if got.Status != domain.StatusInProgress {
		t.Errorf("stored Status = %q, want %q", got.Status, domain.StatusInProgress)
	}
}

func TestSetStatus_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.SetStatus(context.Background(), "unknown", domain.StatusCancelled)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
