package normalize_test

import (
	"testing"
	"time"

	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/normalize"
)

// ── TitleCase ──────────────────────────────────────────────────────────────

func TestTitleCase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain words", input: "acme corp", want: "Acme Corp"},
		{name: "preserves acronym", input: "IBM research", want: "IBM Research"},
		{name: "mixed case flattened", input: "aCmE cOrP", want: "Acme Corp"},
		{name: "legal suffix kept", input: "widgets LLC", want: "Widgets LLC"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.TitleCase(tt.input); got != tt.want {
				t.Fatalf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ── ParseSalary ────────────────────────────────────────────────────────────

func TestParseSalary(t *testing.T) {
	ptr := func(v int) *int { return &v }
	tests := []struct {
		name    string
		input   string
		wantMin *int
		wantMax *int
	}{
		{name: "dollar range k", input: "$120k - $150k", wantMin: ptr(120000), wantMax: ptr(150000)},
		{name: "comma thousands", input: "120,000 - 150,000 USD", wantMin: ptr(120000), wantMax: ptr(150000)},
		{name: "single pound k", input: "£90k", wantMin: ptr(90000), wantMax: ptr(90000)},
		{name: "reversed bounds swapped", input: "$150k-$120k", wantMin: ptr(120000), wantMax: ptr(150000)},
		{name: "plain big number", input: "up to 80000 per year", wantMin: ptr(80000), wantMax: ptr(80000)},
		{name: "never guessed from words", input: "competitive salary", wantMin: nil, wantMax: nil},
		{name: "year is not a salary", input: "posted in 2024", wantMin: nil, wantMax: nil},
		{name: "empty", input: "", wantMin: nil, wantMax: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax := normalize.ParseSalary(tt.input)
			if !intPtrEq(gotMin, tt.wantMin) || !intPtrEq(gotMax, tt.wantMax) {
				t.Fatalf("ParseSalary(%q) = (%v, %v), want (%v, %v)",
					tt.input, fmtPtr(gotMin), fmtPtr(gotMax), fmtPtr(tt.wantMin), fmtPtr(tt.wantMax))
			}
		})
	}
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// ── RemoteHint ─────────────────────────────────────────────────────────────

func TestRemoteHint(t *testing.T) {
	tests := []struct {
		name     string
		explicit bool
		fields   []string
		want     model.RemoteType
	}{
		{name: "explicit flag", explicit: true, fields: []string{"Paris office"}, want: model.RemoteTypeRemote},
		{name: "remote word", fields: []string{"Remote, Worldwide"}, want: model.RemoteTypeRemote},
		{name: "hybrid beats remote", fields: []string{"Hybrid remote, London"}, want: model.RemoteTypeHybrid},
		{name: "wfh", fields: []string{"", "Backend dev", "work from home friendly"}, want: model.RemoteTypeRemote},
		{name: "onsite", fields: []string{"On-site, Berlin"}, want: model.RemoteTypeOnsite},
		{name: "no hint", fields: []string{"Berlin"}, want: model.RemoteTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalize.RemoteHint(tt.explicit, tt.fields...); got != tt.want {
				t.Fatalf("RemoteHint = %q, want %q", got, tt.want)
			}
		})
	}
}

// ── Region / Collapse ──────────────────────────────────────────────────────

func TestRegion(t *testing.T) {
	if got := normalize.Region("SF, CA"); got != "San Francisco, CA" {
		t.Fatalf("Region(SF, CA) = %q", got)
	}
	if got := normalize.Region("London, UK"); got != "London, United Kingdom" {
		t.Fatalf("Region(London, UK) = %q", got)
	}
	if got := normalize.Region("Berlin"); got != "Berlin" {
		t.Fatalf("Region(Berlin) = %q", got)
	}
}

func TestCollapse(t *testing.T) {
	if got := normalize.Collapse("  Senior\t\tBackend \n Engineer "); got != "Senior Backend Engineer" {
		t.Fatalf("Collapse = %q", got)
	}
}

// ── Listing ────────────────────────────────────────────────────────────────

func TestListing(t *testing.T) {
	raw := model.RawListing{
		ExternalID:  " 42 ",
		Source:      "Adzuna",
		Title:       "senior  backend engineer",
		Company:     "acme corp",
		Location:    "NYC",
		SalaryText:  "$100k-$120k",
		Description: "Build  things remotely",
		PostedAt:    "2026-04-01T10:00:00Z",
	}
	job := normalize.Listing(raw)

	if job.Source != "adzuna" || job.ExternalID != "42" {
		t.Fatalf("identity not normalized: %q %q", job.Source, job.ExternalID)
	}
	if job.Company != "Acme Corp" {
		t.Fatalf("company = %q", job.Company)
	}
	if job.Location != "New York" {
		t.Fatalf("location = %q", job.Location)
	}
	if job.SalaryMin == nil || *job.SalaryMin != 100000 || job.SalaryMax == nil || *job.SalaryMax != 120000 {
		t.Fatalf("salary = %v %v", job.SalaryMin, job.SalaryMax)
	}
	if job.RemoteType != model.RemoteTypeRemote {
		t.Fatalf("remoteType = %q", job.RemoteType)
	}
	want := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	if !job.PostedDate.Equal(want) {
		t.Fatalf("postedDate = %v", job.PostedDate)
	}
}

func TestListingDeterministic(t *testing.T) {
	raw := model.RawListing{Source: "adzuna", ExternalID: "1", Title: "Dev", Company: "ACME", Location: "SF"}
	a := normalize.Listing(raw)
	b := normalize.Listing(raw)
	if a.DedupKey() != b.DedupKey() || a.Company != b.Company {
		t.Fatal("Listing must be deterministic")
	}
}
