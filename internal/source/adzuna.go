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
	"time"

	"joblens/catalog-service/internal/model"
)

const (
	adzunaName     = "adzuna"
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3 // max 150 results per query
	httpTimeout    = 15 * time.Second
)

// Adzuna fetches listings from the Adzuna public API.
type Adzuna struct {
	appID   string
	appKey  string
	country string // "fr", "gb", "us", ...
	baseURL string
	client  *http.Client
}

// NewAdzuna constructs the adapter with a shared HTTP client.
func NewAdzuna(appID, appKey, country string) *Adzuna {
	return &Adzuna{
		appID:   appID,
		appKey:  appKey,
		country: country,
		baseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

func (a *Adzuna) Name() string { return adzunaName }

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaCompany  `json:"company"`
	Location     adzunaLocation `json:"location"`
	Category     adzunaCategory `json:"category"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// Search walks result pages until the board runs dry or adzunaMaxPages.
func (a *Adzuna) Search(ctx context.Context, q model.SearchQuery) ([]model.RawListing, error) {
	var out []model.RawListing
	for page := 1; page <= adzunaMaxPages; page++ {
		batch, err := a.fetchPage(ctx, q.Keywords, q.Location, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		out = append(out, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}
	return out, nil
}

// FetchDetail resolves one listing by id. Adzuna has no per-id endpoint, so
// the adapter searches on the id and picks the exact match.
func (a *Adzuna) FetchDetail(ctx context.Context, externalID string) (*model.RawListing, error) {
	batch, err := a.fetchPage(ctx, externalID, "", 1)
	if err != nil {
		return nil, err
	}
	for i := range batch {
		if batch[i].ExternalID == externalID {
			return &batch[i], nil
		}
	}
	return nil, nil
}

func (a *Adzuna) fetchPage(ctx context.Context, what, where string, page int) ([]model.RawListing, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", a.baseURL, a.country, page)

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	if what != "" {
		params.Set("what", what)
	}
	if where != "" {
		params.Set("where", where)
	}
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	out := make([]model.RawListing, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		listing := model.RawListing{
			ExternalID:  r.ID,
			Source:      adzunaName,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			JobType:     r.ContractTime,
			Description: r.Description,
			ApplyURL:    r.RedirectURL,
			Industry:    r.Category.Label,
			PostedAt:    r.Created,
		}
		if r.SalaryMin > 0 {
			v := int(r.SalaryMin)
			listing.SalaryMin = &v
		}
		if r.SalaryMax > 0 {
			v := int(r.SalaryMax)
			listing.SalaryMax = &v
		}
		out = append(out, listing)
	}
	return out, nil
}
