// Package embedding turns job and profile text into fixed-length vectors
// through an external provider, and feeds the vector index asynchronously.
package embedding

import (
	"context"
	"strconv"
	"strings"

	"joblens/catalog-service/internal/model"
)

// Embedder produces one fixed-dimension vector per text. Provider outages
// surface as model.ErrEmbeddingUnavailable and degrade recommendations to
// keyword-only ranking; they are never fatal.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// JobText concatenates the fields that carry a job's meaning.
func JobText(j model.Job) string {
	parts := []string{j.Title, j.Company, j.Industry, j.Description}
	parts = append(parts, j.Requirements...)
	return joinNonEmpty(parts)
}

// ProfileText concatenates a profile's skills, experience and career goal.
func ProfileText(p model.Profile) string {
	parts := make([]string, 0, len(p.Skills)+3)
	for _, s := range p.Skills {
		parts = append(parts, s.Name)
	}
	if p.TotalYears > 0 {
		parts = append(parts, strconv.Itoa(p.TotalYears)+" years experience")
	}
	parts = append(parts, strings.Join(p.Industries, " "), p.CareerGoal)
	return joinNonEmpty(parts)
}

func joinNonEmpty(parts []string) string {
	out := parts[:0]
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}
