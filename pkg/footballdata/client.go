package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jon4hz/foxtip/internal/config"
)

// Match statuses as reported by the API.
const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusInPlay    = "IN_PLAY"
	StatusPaused    = "PAUSED"
	StatusFinished  = "FINISHED"
	StatusPostponed = "POSTPONED"
)

// Client represents a football-data.org v4 API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new football-data.org API client.
func New(cfg *config.FootballDataConfig) *Client {
	return &Client{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Competition is the league or cup a match belongs to.
type Competition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Team is one side of a match.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// Match is a single fixture.
type Match struct {
	ID          int         `json:"id"`
	UTCDate     time.Time   `json:"utcDate"`
	Status      string      `json:"status"`
	Competition Competition `json:"competition"`
	HomeTeam    Team        `json:"homeTeam"`
	AwayTeam    Team        `json:"awayTeam"`
}

// ResultSet describes the size of a match list.
type ResultSet struct {
	Count int    `json:"count"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// MatchList is the response of /v4/matches.
type MatchList struct {
	ResultSet ResultSet `json:"resultSet"`
	Matches   []Match   `json:"matches"`
}

// GetMatches returns all matches between dateFrom and dateTo (inclusive, YYYY-MM-DD) across
// the competitions available to the API token.
func (c *Client) GetMatches(ctx context.Context, dateFrom, dateTo string) (*MatchList, error) {
	params := url.Values{}
	if dateFrom != "" {
		params.Set("dateFrom", dateFrom)
	}
	if dateTo != "" {
		params.Set("dateTo", dateTo)
	}
	endpoint := "/v4/matches"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	var list MatchList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("error decoding matches: %w", err)
	}
	return &list, nil
}

// doRequest performs an HTTP request against the API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("X-Auth-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close() //nolint:errcheck
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}
