// Package normalize turns raw source listings into canonical Jobs.
// Every function here is pure and deterministic.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"joblens/catalog-service/internal/model"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)

	// Salary amounts are recognized only with an explicit marker: a currency
	// symbol, a "k" suffix, or a magnitude that cannot be a year or headcount.
	reSalaryToken = regexp.MustCompile(`(?i)([$£€])?\s*(\d{1,3}(?:,\d{3})+|\d+(?:\.\d+)?)\s*(k\b)?`)

	reRemote = regexp.MustCompile(`(?i)\b(remote|work from home|wfh|anywhere|distributed)\b`)
	reHybrid = regexp.MustCompile(`(?i)\bhybrid\b`)
	reOnsite = regexp.MustCompile(`(?i)\b(on-?site|in.office|office.based)\b`)
)

// regionAliases expands common location shorthand before storage.
var regionAliases = map[string]string{
	"nyc": "New York",
	"ny":  "New York",
	"sf":  "San Francisco",
	"la":  "Los Angeles",
	"uk":  "United Kingdom",
	"usa": "United States",
	"us":  "United States",
	"eu":  "Europe",
}

// Listing converts one raw listing into a canonical Job. The job carries no
// store identity yet; the aggregator assigns that on upsert.
func Listing(raw model.RawListing) model.Job {
	job := model.Job{
		ExternalID:       strings.TrimSpace(raw.ExternalID),
		Source:           strings.ToLower(strings.TrimSpace(raw.Source)),
		Title:            Collapse(raw.Title),
		Company:          TitleCase(Collapse(raw.Company)),
		Location:         Region(TitleCase(Collapse(raw.Location))),
		JobType:          strings.ToLower(Collapse(raw.JobType)),
		Description:      Collapse(raw.Description),
		Requirements:     collapseAll(raw.Requirements),
		Responsibilities: collapseAll(raw.Responsibilities),
		Benefits:         collapseAll(raw.Benefits),
		ApplyURL:         strings.TrimSpace(raw.ApplyURL),
		Industry:         Collapse(raw.Industry),
		ExperienceLevel:  strings.ToLower(Collapse(raw.ExperienceLevel)),
		PostedDate:       ParsePostedDate(raw.PostedAt),
	}

	if raw.SalaryMin != nil || raw.SalaryMax != nil {
		job.SalaryMin, job.SalaryMax = raw.SalaryMin, raw.SalaryMax
		if job.SalaryMin == nil {
			job.SalaryMin = job.SalaryMax
		}
		if job.SalaryMax == nil {
			job.SalaryMax = job.SalaryMin
		}
	} else {
		job.SalaryMin, job.SalaryMax = ParseSalary(raw.SalaryText)
	}

	job.RemoteType = RemoteHint(raw.Remote, raw.Location, raw.Title, raw.Description)
	return job
}

// Collapse trims and squeezes internal whitespace.
func Collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func collapseAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if c := Collapse(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// TitleCase capitalizes each word while preserving acronyms: a token that is
// already all upper case (IBM, LLC, NY) is kept as is.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if isAllUpper(w) {
			continue
		}
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// Region expands known location abbreviations, comparing case-insensitively
// on comma-separated segments ("SF, CA" -> "San Francisco, CA").
func Region(s string) string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		key := strings.ToLower(strings.TrimSpace(p))
		if full, ok := regionAliases[key]; ok {
			parts[i] = full
		} else {
			parts[i] = strings.TrimSpace(p)
		}
	}
	return strings.Join(parts, ", ")
}

// ParseSalary extracts numeric min/max from free-text salary, only when a
// recognizable money pattern is present. Unparseable text yields nil/nil,
// never a guess. A single recognizable amount fills both bounds.
func ParseSalary(text string) (*int, *int) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var amounts []int
	for _, m := range reSalaryToken.FindAllStringSubmatch(text, -1) {
		currency, digits, kSuffix := m[1], m[2], m[3]
		v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
		if err != nil {
			continue
		}
		if kSuffix != "" {
			v *= 1000
		}
		// No currency and no k: only magnitudes that read as annual pay count.
		if currency == "" && kSuffix == "" && v < 10000 {
			continue
		}
		if v < 1000 {
			continue
		}
		amounts = append(amounts, int(v))
	}

	switch len(amounts) {
	case 0:
		return nil, nil
	case 1:
		v := amounts[0]
		return &v, &v
	default:
		lo, hi := amounts[0], amounts[1]
		if hi < lo {
			lo, hi = hi, lo
		}
		return &lo, &hi
	}
}

// RemoteHint maps free-text remote markers onto the RemoteType flag.
// An explicit source flag wins; otherwise the first field with a hint decides.
func RemoteHint(explicitRemote bool, fields ...string) model.RemoteType {
	if explicitRemote {
		return model.RemoteTypeRemote
	}
	for _, f := range fields {
		switch {
		case reHybrid.MatchString(f):
			return model.RemoteTypeHybrid
		case reRemote.MatchString(f):
			return model.RemoteTypeRemote
		case reOnsite.MatchString(f):
			return model.RemoteTypeOnsite
		}
	}
	return model.RemoteTypeUnknown
}

// ParsePostedDate tries the timestamp layouts the upstreams actually emit.
func ParsePostedDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
