package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"joblens/catalog-service/internal/model"
)

const (
	remotiveName    = "remotive"
	remotiveBaseURL = "https://remotive.com/api/remote-jobs"
)

// Remotive fetches listings from the Remotive public API.
// Every Remotive job is remote by definition.
type Remotive struct {
	baseURL string
	client  *http.Client
}

// NewRemotive constructs the adapter.
func NewRemotive() *Remotive {
	return &Remotive{
		baseURL: remotiveBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

func (r *Remotive) Name() string { return remotiveName }

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID          json.Number `json:"id"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	CompanyName string      `json:"company_name"`
	Category    string      `json:"category"`
	JobType     string      `json:"job_type"`
	Location    string      `json:"candidate_required_location"`
	Salary      string      `json:"salary"`
	Description string      `json:"description"`
	PublishedAt string      `json:"publication_date"`
	Tags        []string    `json:"tags"`
}

func (r *Remotive) Search(ctx context.Context, q model.SearchQuery) ([]model.RawListing, error) {
	params := url.Values{}
	if q.Keywords != "" {
		params.Set("search", q.Keywords)
	}
	params.Set("limit", strconv.Itoa(100))

	jobs, err := r.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]model.RawListing, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, r.toListing(j))
	}
	return out, nil
}

// FetchDetail resolves one listing by id. Remotive exposes no per-id
// endpoint; the adapter pulls the current feed and matches on id.
func (r *Remotive) FetchDetail(ctx context.Context, externalID string) (*model.RawListing, error) {
	jobs, err := r.fetch(ctx, url.Values{})
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if j.ID.String() == externalID {
			listing := r.toListing(j)
			return &listing, nil
		}
	}
	return nil, nil
}

func (r *Remotive) fetch(ctx context.Context, params url.Values) ([]remotiveJob, error) {
	endpoint := r.baseURL
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remotive returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResp remotiveResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return apiResp.Jobs, nil
}

func (r *Remotive) toListing(j remotiveJob) model.RawListing {
	return model.RawListing{
		ExternalID:   j.ID.String(),
		Source:       remotiveName,
		Title:        j.Title,
		Company:      j.CompanyName,
		Location:     j.Location,
		JobType:      j.JobType,
		SalaryText:   j.Salary,
		Description:  j.Description,
		Requirements: j.Tags,
		ApplyURL:     j.URL,
		Industry:     j.Category,
		PostedAt:     j.PublishedAt,
		Remote:       true,
	}
}
