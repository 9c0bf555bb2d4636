// Package match scores jobs against user profiles and ranks
// recommendations, mixing vector similarity for candidate retrieval with
// exact multi-factor scores for the final ordering.
package match

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"joblens/catalog-service/internal/embedding"
	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/store"
	"joblens/catalog-service/internal/vector"
)

// Factor weights. They must sum to 1.0 so Overall stays in [0,100].
const (
	weightSkill      = 0.35
	weightExperience = 0.25
	weightLocation   = 0.15
	weightSalary     = 0.10
	weightCulture    = 0.15
)

const (
	defaultTopK     = 50
	defaultPageSize = 20
	maxPageSize     = 100
)

// Engine computes match scores and recommendations. The vector index and
// embedder are optional; without them (or when they fail) Recommend falls
// back to keyword ranking over a store scan.
type Engine struct {
	store    store.JobStore
	index    vector.Index
	embedder embedding.Embedder
	logger   *zap.Logger
	topK     int
}

func NewEngine(st store.JobStore, idx vector.Index, emb embedding.Embedder, logger *zap.Logger) *Engine {
	return &Engine{
		store:    st,
		index:    idx,
		embedder: emb,
		logger:   logger,
		topK:     defaultTopK,
	}
}

// Analyze scores a single stored job against the profile.
func (e *Engine) Analyze(ctx context.Context, profile model.Profile, jobID uuid.UUID) (*model.MatchScore, error) {
	job, err := e.store.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	score := e.Score(profile, *job)
	return &score, nil
}

// BatchMatch scores an explicit job-id list, preserving input order.
// Unknown ids are skipped rather than failing the batch.
func (e *Engine) BatchMatch(ctx context.Context, profile model.Profile, jobIDs []uuid.UUID) ([]model.MatchScore, error) {
	scores := make([]model.MatchScore, 0, len(jobIDs))
	for _, id := range jobIDs {
		job, err := e.store.GetByID(ctx, id)
		if err != nil {
			if errorsIsNotFound(err) {
				continue
			}
			return nil, err
		}
		scores = append(scores, e.Score(profile, *job))
	}
	return scores, nil
}

// Recommend ranks catalog jobs for the profile, best first. Candidates come
// from the vector index when available, otherwise from a filtered store
// scan; either way the ordering is by exact score, not raw similarity.
func (e *Engine) Recommend(ctx context.Context, profile model.Profile, f store.Filter, page, pageSize int) ([]model.MatchScore, error) {
	jobs, err := e.candidates(ctx, profile, f)
	if err != nil {
		return nil, err
	}

	scores := make([]model.MatchScore, 0, len(jobs))
	for _, job := range jobs {
		if !f.Matches(job) {
			continue
		}
		scores = append(scores, e.Score(profile, job))
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Overall != scores[j].Overall {
			return scores[i].Overall > scores[j].Overall
		}
		return scores[i].JobID.String() < scores[j].JobID.String()
	})
	return paginate(scores, page, pageSize), nil
}

// candidates retrieves jobs to score. The vector path embeds the profile and
// asks the index for nearest neighbors; any failure there degrades to the
// store scan instead of erroring.
func (e *Engine) candidates(ctx context.Context, profile model.Profile, f store.Filter) ([]model.Job, error) {
	if e.embedder == nil || e.index == nil {
		return e.store.Scan(ctx, f)
	}

	vec, err := e.embedder.Embed(ctx, embedding.ProfileText(profile))
	if err != nil {
		e.logger.Warn("profile embedding failed, falling back to keyword ranking", zap.Error(err))
		return e.store.Scan(ctx, f)
	}
	cands, err := e.index.TopK(ctx, vec, e.topK, metaPredicate(f))
	if err != nil {
		e.logger.Warn("vector query failed, falling back to keyword ranking", zap.Error(err))
		return e.store.Scan(ctx, f)
	}

	jobs := make([]model.Job, 0, len(cands))
	for _, c := range cands {
		job, err := e.store.GetByID(ctx, c.JobID)
		if err != nil {
			if errorsIsNotFound(err) {
				continue
			}
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

// metaPredicate narrows the nearest-neighbor search using the metadata
// stored alongside each vector. Full filtering still happens on the loaded
// jobs; this only trims obvious misses early.
func metaPredicate(f store.Filter) vector.Predicate {
	wantRemoteOnly := len(f.RemoteTypes) == 1 && f.RemoteTypes[0] == model.RemoteTypeRemote
	if !wantRemoteOnly && f.SalaryMin == nil && f.SalaryMax == nil {
		return nil
	}
	return func(m vector.Metadata) bool {
		if wantRemoteOnly && !m.Remote {
			return false
		}
		if f.SalaryMin != nil || f.SalaryMax != nil {
			if m.SalaryMin == nil || m.SalaryMax == nil {
				return false
			}
			if f.SalaryMax != nil && *m.SalaryMin > *f.SalaryMax {
				return false
			}
			if f.SalaryMin != nil && *m.SalaryMax < *f.SalaryMin {
				return false
			}
		}
		return true
	}
}

// Score computes the full multi-factor match of one job for one profile.
// Every factor lands in [0,100], so the weighted sum does too.
func (e *Engine) Score(profile model.Profile, job model.Job) model.MatchScore {
	skill, matching, missing := skillScore(profile, job)
	b := model.MatchBreakdown{
		Skill:      skill,
		Experience: experienceScore(profile, job),
		Location:   locationScore(profile, job),
		Salary:     salaryScore(profile, job),
		Culture:    cultureScore(profile, job),
	}
	overall := weightSkill*b.Skill +
		weightExperience*b.Experience +
		weightLocation*b.Location +
		weightSalary*b.Salary +
		weightCulture*b.Culture
	return model.MatchScore{
		JobID:          job.ID,
		ProfileID:      profile.ID,
		Overall:        clampScore(math.Round(overall)),
		Breakdown:      b,
		MatchingSkills: matching,
		MissingSkills:  missing,
	}
}

// skillScore measures how much of the job's requirements the profile covers,
// weighted by the declared years of the matched skills. A job with no
// requirements scores a neutral 50; a profile with no skills scores 0.
func skillScore(profile model.Profile, job model.Job) (float64, []string, []string) {
	if len(job.Requirements) == 0 {
		return 50, nil, nil
	}
	if len(profile.Skills) == 0 {
		return 0, nil, requirementLabels(job.Requirements)
	}

	matchedSkills := make(map[string]model.SkillLevel)
	var matching, missing []string
	covered := 0

	for _, req := range job.Requirements {
		reqNorm := normalizeTerm(req)
		hit := false
		for _, skill := range profile.Skills {
			if skillMatchesRequirement(skill.Name, reqNorm) {
				hit = true
				if _, seen := matchedSkills[skill.Name]; !seen {
					matchedSkills[skill.Name] = skill
					matching = append(matching, skill.Name)
				}
			}
		}
		if hit {
			covered++
		} else {
			missing = append(missing, strings.TrimSpace(req))
		}
	}

	coverage := float64(covered) / float64(len(job.Requirements))

	// Proficiency of the matched skills: 10+ years counts as full.
	proficiency := 0.0
	for _, s := range matchedSkills {
		proficiency += math.Min(float64(s.Years), 10) / 10
	}
	if len(matchedSkills) > 0 {
		proficiency /= float64(len(matchedSkills))
	}

	score := 100 * coverage * (0.6 + 0.4*proficiency)
	return math.Min(score, 100), matching, missing
}

func skillMatchesRequirement(skillName, reqNorm string) bool {
	for _, v := range variants(skillName) {
		if v == reqNorm || containsPhrase(reqNorm, v) {
			return true
		}
	}
	return false
}

func requirementLabels(reqs []string) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, strings.TrimSpace(r))
	}
	return out
}

// experienceBands maps a job's declared level onto a years range.
var experienceBands = map[string][2]float64{
	"entry":     {0, 2},
	"junior":    {0, 2},
	"mid":       {2, 5},
	"middle":    {2, 5},
	"senior":    {5, 9},
	"lead":      {9, 40},
	"principal": {9, 40},
	"staff":     {9, 40},
}

// experienceScore compares the profile's total years with the job's band.
// Inside the band is a perfect 100. Underqualification decays 25 points per
// missing year; overqualification decays 10 points per extra year, since a
// senior applying down is a weaker objection than a junior applying up.
func experienceScore(profile model.Profile, job model.Job) float64 {
	band, ok := experienceBands[strings.ToLower(strings.TrimSpace(job.ExperienceLevel))]
	if !ok {
		return 70
	}
	years := float64(profile.TotalYears)
	switch {
	case years >= band[0] && years <= band[1]:
		return 100
	case years < band[0]:
		return math.Max(0, 100-25*(band[0]-years))
	default:
		return math.Max(0, 100-10*(years-band[1]))
	}
}

// locationScore rewards remote jobs for remote-friendly profiles and
// preferred-location matches, and stays neutral when the profile states no
// preference.
func locationScore(profile model.Profile, job model.Job) float64 {
	if profile.AcceptsRemote {
		switch job.RemoteType {
		case model.RemoteTypeRemote:
			return 100
		case model.RemoteTypeHybrid:
			return 85
		}
	}
	jobLoc := strings.ToLower(job.Location)
	for _, pref := range profile.PreferredLocations {
		p := strings.ToLower(strings.TrimSpace(pref))
		if p == "" {
			continue
		}
		if strings.Contains(jobLoc, p) || strings.Contains(p, jobLoc) {
			return 80
		}
	}
	if len(profile.PreferredLocations) == 0 {
		return 50
	}
	return 20
}

// salaryScore checks whether the profile's minimum acceptable salary fits
// the job's range: anywhere at or below the range top is a full 100.
// Above the top, credit decays linearly over one range width, so a floor
// just past the ceiling is not treated like one far beyond it.
// Undisclosed salary on either side is a neutral 50.
func salaryScore(profile model.Profile, job model.Job) float64 {
	if job.SalaryMin == nil || job.SalaryMax == nil || profile.MinSalary == nil {
		return 50
	}
	want := float64(*profile.MinSalary)
	lo, hi := float64(*job.SalaryMin), float64(*job.SalaryMax)
	if hi < lo {
		lo, hi = hi, lo
	}
	switch {
	case want <= hi:
		return 100
	case hi == lo:
		return 0
	default:
		return math.Max(0, 100*(1-(want-hi)/(hi-lo)))
	}
}

// cultureScore overlaps the profile's industry and career-goal keywords with
// the job's industry and description. No stated interests is a neutral 50.
func cultureScore(profile model.Profile, job model.Job) float64 {
	terms := extractKeywords(strings.Join(profile.Industries, " ") + " " + profile.CareerGoal)
	if len(terms) == 0 {
		return 50
	}
	jobTerms := extractKeywords(job.Industry + " " + job.Description)
	hits := 0
	for t := range terms {
		if jobTerms[t] {
			hits++
		}
	}
	return 100 * float64(hits) / float64(len(terms))
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

func paginate(scores []model.MatchScore, page, pageSize int) []model.MatchScore {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	start := (page - 1) * pageSize
	if start >= len(scores) {
		return []model.MatchScore{}
	}
	end := start + pageSize
	if end > len(scores) {
		end = len(scores)
	}
	out := make([]model.MatchScore, end-start)
	copy(out, scores[start:end])
	return out
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
