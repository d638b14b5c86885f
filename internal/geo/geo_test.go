package geo

import (
	"net/http/httptest"
	"testing"
)

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Vercel-IP-Country", "FR")
	r.Header.Set("X-Vercel-IP-Country-Region", "IDF")
	r.Header.Set("X-Vercel-IP-City", "Saint-%C3%89tienne")

	loc := FromRequest(r)
	if loc.Country != "FR" || loc.Region != "IDF" {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.City != "Saint-Étienne" {
		t.Errorf("expected decoded city, got %q", loc.City)
	}
}

func TestFromRequest_CloudflareFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("CF-IPCountry", "DE")

	loc := FromRequest(r)
	if loc.Country != "DE" {
		t.Errorf("expected DE, got %q", loc.Country)
	}
}

func TestFromRequest_Empty(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	loc := FromRequest(r)
	if loc != (Location{}) {
		t.Errorf("expected empty location, got %+v", loc)
	}
}
