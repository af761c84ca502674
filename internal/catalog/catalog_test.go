package catalog

import (
	"testing"

	"surfalert-service/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", c.Len())
	}

	taiba, ok := c.Get("taiba")
	if !ok {
		t.Fatal("taiba not found")
	}
	if taiba.IdealWindDirection != "NE/E" {
		t.Errorf("taiba ideal wind = %s, want NE/E", taiba.IdealWindDirection)
	}
	if taiba.Lat != -3.6167 || taiba.Lng != -38.9167 {
		t.Errorf("taiba coordinates = %v,%v", taiba.Lat, taiba.Lng)
	}

	if _, ok := c.Get("pipeline"); ok {
		t.Error("unknown slug should not resolve")
	}
}

func TestCatalogOrderAndNames(t *testing.T) {
	c := New([]models.SpotProfile{
		{Slug: "b", Name: "Bravo"},
		{Slug: "a", Name: "Alpha"},
		{Slug: "b", Name: "Duplicate"},
	})

	all := c.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all[0].Slug != "b" || all[1].Slug != "a" {
		t.Errorf("order = %s,%s, want b,a", all[0].Slug, all[1].Slug)
	}
	if c.Name("b") != "Bravo" {
		t.Errorf("Name(b) = %s, want first registration", c.Name("b"))
	}
	if c.Name("zzz") != "zzz" {
		t.Errorf("Name of unknown slug should echo the slug")
	}
}
