package cache

import (
	"context"
	"testing"
	"time"

	"joblens/catalog-service/internal/model"
)

func page(total int) *model.SearchResult {
	return &model.SearchResult{
		Jobs:       []model.Job{{Title: "Dev", Source: "adzuna", ExternalID: "1"}},
		Total:      total,
		Page:       1,
		TotalPages: 1,
	}
}

func TestMemory_HitWithinTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(5 * time.Minute)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if err := c.SetPage(ctx, "fp", page(3)); err != nil {
		t.Fatal(err)
	}

	base = base.Add(4 * time.Minute)
	got, err := c.GetPage(ctx, "fp")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Total != 3 {
		t.Fatalf("want cached page with total 3, got %+v", got)
	}
}

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(5 * time.Minute)
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if err := c.SetPage(ctx, "fp", page(3)); err != nil {
		t.Fatal(err)
	}

	base = base.Add(6 * time.Minute)
	got, err := c.GetPage(ctx, "fp")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("entry should have expired, got %+v", got)
	}
}

func TestMemory_MissReturnsNilNil(t *testing.T) {
	got, err := NewMemory(time.Minute).GetPage(context.Background(), "unknown")
	if err != nil || got != nil {
		t.Fatalf("miss must be (nil, nil), got (%v, %v)", got, err)
	}
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)
	if err := c.SetPage(ctx, "fp", page(1)); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, "fp"); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.GetPage(ctx, "fp"); got != nil {
		t.Fatal("invalidated entry still served")
	}
}

func TestMemory_IdenticalPayloadAcrossHits(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)
	if err := c.SetPage(ctx, "fp", page(2)); err != nil {
		t.Fatal(err)
	}
	a, _ := c.GetPage(ctx, "fp")
	b, _ := c.GetPage(ctx, "fp")
	if a == nil || b == nil || a.Total != b.Total || len(a.Jobs) != len(b.Jobs) {
		t.Fatal("repeated hits within TTL must return identical pages")
	}
}
