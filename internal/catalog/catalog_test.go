package catalog

import "testing"

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if len(c.Services()) != 16 {
		t.Fatalf("expected 16 services, got %d", len(c.Services()))
	}
	if len(c.Pharmacies()) != 6 {
		t.Fatalf("expected 6 pharmacies, got %d", len(c.Pharmacies()))
	}
	if len(c.Categories()) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(c.Categories()))
	}

	abpm, ok := c.Service("bp_abpm")
	if !ok {
		t.Fatalf("bp_abpm missing from catalog")
	}
	if !abpm.Fixed() || *abpm.Fee != 50.85 {
		t.Fatalf("unexpected bp_abpm fee: %+v", abpm.Fee)
	}

	travel, ok := c.Service("travel_clinic")
	if !ok {
		t.Fatalf("travel_clinic missing from catalog")
	}
	if travel.Fixed() {
		t.Fatalf("travel_clinic should be variable revenue")
	}

	if !c.HasPharmacy("Popley Pharmacy") {
		t.Fatalf("Popley Pharmacy missing from roster")
	}
	if c.HasPharmacy("Nowhere Pharmacy") {
		t.Fatalf("unexpected roster member")
	}
}

func TestNewDeduplicatesServiceIDs(t *testing.T) {
	c := New([]Service{
		{ID: "svc", Label: "First", Category: CategoryCPCS},
		{ID: "svc", Label: "Second", Category: CategoryCPCS},
	}, nil)
	if len(c.Services()) != 1 {
		t.Fatalf("expected duplicate id to be dropped, got %d services", len(c.Services()))
	}
	svc, _ := c.Service("svc")
	if svc.Label != "First" {
		t.Fatalf("expected first occurrence to win, got %q", svc.Label)
	}
}
