package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/blockprint/blockprint/pkg/blueprint"
	"github.com/blockprint/blockprint/pkg/cache"
	bperrors "github.com/blockprint/blockprint/pkg/errors"
)

func sample(width int) *blueprint.Blueprint {
	return &blueprint.Blueprint{
		View: blueprint.ViewFront,
		Building: &blueprint.Building{
			WidthBlocks: width, WallHeightBlocks: 4, DepthBlocks: 6,
			Roof: &blueprint.Roof{Shape: blueprint.RoofHip, HeightBlocks: 3, Overhang: 1},
		},
		Style: blueprint.DefaultStyle(),
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	defer s.Close()

	rec, created, err := s.Put(ctx, sample(9), []string{"building: depth_blocks missing, using 10"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !created || rec.ID == "" || len(rec.Digest) != 64 {
		t.Fatalf("record = %+v, created %v", rec, created)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Blueprint.Building.WidthBlocks != 9 || got.Blueprint.Building.Roof.Shape != blueprint.RoofHip {
		t.Errorf("round trip lost data: %+v", got.Blueprint.Building)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("warnings = %v", got.Warnings)
	}
}

func TestPutDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := New(cache.NewMemoryCache())

	first, _, err := s.Put(ctx, sample(5), nil)
	if err != nil {
		t.Fatal(err)
	}
	second, created, err := s.Put(ctx, sample(5), nil)
	if err != nil {
		t.Fatal(err)
	}
	if created || second.ID != first.ID {
		t.Errorf("identical blueprint stored twice: %s vs %s", first.ID, second.ID)
	}

	other, created, _ := s.Put(ctx, sample(6), nil)
	if !created || other.ID == first.ID {
		t.Error("different blueprint should get a new id")
	}
}

func TestPutAfterDelete(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	rec, _, _ := s.Put(ctx, sample(5), nil)
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	again, created, err := s.Put(ctx, sample(5), nil)
	if err != nil || !created || again.ID == rec.ID {
		t.Errorf("re-put after delete = %+v, %v, %v", again, created, err)
	}
}

func TestPutInvalid(t *testing.T) {
	_, _, err := New(nil).Put(context.Background(), &blueprint.Blueprint{}, nil)
	if !bperrors.Is(err, bperrors.ErrCodeInvalidBlueprint) {
		t.Errorf("err = %v, want INVALID_BLUEPRINT", err)
	}
}

func TestGetErrors(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	tests := []struct {
		id   string
		code bperrors.Code
	}{
		{"", bperrors.ErrCodeInvalidInput},
		{"../etc/passwd", bperrors.ErrCodeInvalidInput},
		{"4b1d6c2e-0000-4000-8000-000000000000", bperrors.ErrCodeBlueprintNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if _, err := s.Get(ctx, tt.id); !bperrors.Is(err, tt.code) {
				t.Errorf("Get(%q) = %v, want %s", tt.id, err, tt.code)
			}
		})
	}
	if err := s.Delete(ctx, "missing"); !bperrors.Is(err, bperrors.ErrCodeBlueprintNotFound) {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestOptions(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()
	n := 0
	s := New(backend,
		WithKeyer(cache.NewScopedKeyer(nil, "test:")),
		WithTTL(time.Minute),
	)
	s.newID = func() string { n++; return fmt.Sprintf("id-%d", n) }
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	rec, _, err := s.Put(ctx, sample(3), nil)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "id-1" || !rec.CreatedAt.Equal(s.now()) {
		t.Errorf("record = %+v", rec)
	}
	if _, hit, _ := backend.Get(ctx, "test:blueprint:id-1"); !hit {
		t.Error("record not stored under scoped key")
	}
}

func TestDigestStable(t *testing.T) {
	a, err := Digest(sample(4))
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Digest(sample(4))
	c, _ := Digest(sample(5))
	if a != b || a == c {
		t.Errorf("digests: %s %s %s", a, b, c)
	}
}
