package voice

import (
	"context"
	"testing"
	"time"

	"outdial-platform/internal/statestore"
)

func TestPicker_RegionalPoolSelection(t *testing.T) {
	p := NewPicker()

	cases := map[string]string{
		"India":          "INDIA",
		"in":             "INDIA",
		"United Kingdom": "UK",
		"new zealand":    "ANZ",
		"australia":      "AUSTRALIA",
		"usa":            "US",
	}
	for region, poolKey := range cases {
		v := p.ByRegion(region)
		found := false
		for _, pv := range regionalPools[poolKey] {
			if pv.ID == v.ID {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("region %q: voice %q not in pool %q", region, v.Name, poolKey)
		}
	}
}

func TestPicker_UnknownRegionUsesDefaultPool(t *testing.T) {
	p := NewPicker()
	v := p.ByRegion("atlantis")
	found := false
	for _, pv := range defaultPool {
		if pv.ID == v.ID {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected default-pool voice, got %q", v.Name)
	}
}

func TestPicker_RotatesThroughPool(t *testing.T) {
	p := NewPicker()
	pool := regionalPools["ANZ"]
	seen := map[string]int{}
	for range 2 * len(pool) {
		seen[p.ByRegion("ANZ").ID]++
	}
	for _, v := range pool {
		if seen[v.ID] != 2 {
			t.Fatalf("expected each ANZ voice twice, got %v", seen)
		}
	}
}

func TestAssignments_Roundtrip(t *testing.T) {
	a := NewAssignments(statestore.NewLocal(), time.Hour)
	ctx := context.Background()

	want := Voice{Name: "Sarah", ID: "y3UNfL9XC5Bb5htg8B0q", Gender: "female"}
	if err := a.Assign(ctx, "call-1", want); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, ok, err := a.Get(ctx, "call-1")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if err := a.Clear(ctx, "call-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := a.Get(ctx, "call-1"); ok {
		t.Fatalf("expected assignment gone after clear")
	}
}
