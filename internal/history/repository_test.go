package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/visitaroute/visitaroute/internal/optimizer"
)

func sampleItinerary(t *testing.T) *optimizer.Itinerary {
	t.Helper()
	return &optimizer.Itinerary{
		Date: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Stops: []optimizer.ScheduledStop{
			{Stop: optimizer.Stop{ID: "navegantes", Name: "Prefeitura de Navegantes", DurationMinutes: 120}},
		},
		Legs:          []optimizer.Leg{{ToID: "navegantes", DistanceKm: 4.2, TravelMinutes: 7.5}},
		RequestedTier: optimizer.TierFull,
		EffectiveTier: optimizer.TierLiveDistance,
		Degraded:      true,
	}
}

func TestNewRecord_RoundTrip(t *testing.T) {
	record, err := NewRecord(sampleItinerary(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID == "" {
		t.Error("record must get an ID")
	}
	if record.StopCount != 1 || record.EffectiveTier != 2 || !record.Degraded {
		t.Errorf("summary fields wrong: %+v", record)
	}

	decoded, err := record.Itinerary()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Stops) != 1 || decoded.Stops[0].ID != "navegantes" {
		t.Errorf("payload round trip lost stops: %+v", decoded.Stops)
	}
}

func TestMemoryRepository_CRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	record, err := NewRecord(sampleItinerary(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != record.ID || got.StopCount != 1 {
		t.Errorf("got %+v", got)
	}

	if err := repo.Delete(ctx, record.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, record.ID); !errors.Is(err, ErrItineraryNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestMemoryRepository_ListPagination(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	base := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		record, err := NewRecord(sampleItinerary(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page1, err := repo.List(ctx, ListOptions{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page1.Items) != 2 || page1.NextCursor == "" {
		t.Fatalf("expected full first page with cursor, got %d items", len(page1.Items))
	}
	if page1.Items[0].CreatedAt.Before(page1.Items[1].CreatedAt) {
		t.Error("list must be newest first")
	}

	page2, err := repo.List(ctx, ListOptions{Limit: 2, Cursor: page1.NextCursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(page2.Items))
	}
	if page2.Items[0].ID == page1.Items[0].ID || page2.Items[0].ID == page1.Items[1].ID {
		t.Error("pages must not overlap")
	}

	page3, err := repo.List(ctx, ListOptions{Limit: 2, Cursor: page2.NextCursor})
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(page3.Items) != 1 || page3.NextCursor != "" {
		t.Errorf("expected final page of 1 with no cursor, got %d items cursor %q",
			len(page3.Items), page3.NextCursor)
	}
}
