package footballdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jon4hz/foxtip/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/matches", r.URL.Path)
		assert.Equal(t, "2026-10-18", r.URL.Query().Get("dateFrom"))
		assert.Equal(t, "2026-10-18", r.URL.Query().Get("dateTo"))
		assert.Equal(t, "test-token", r.Header.Get("X-Auth-Token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"resultSet": {"count": 2, "first": "2026-10-18", "last": "2026-10-18"},
			"matches": [
				{
					"id": 501,
					"utcDate": "2026-10-18T14:00:00Z",
					"status": "TIMED",
					"competition": {"id": 2021, "name": "Premier League", "code": "PL"},
					"homeTeam": {"id": 57, "name": "Arsenal FC", "shortName": "Arsenal"},
					"awayTeam": {"id": 61, "name": "Chelsea FC", "shortName": "Chelsea"}
				},
				{
					"id": 502,
					"utcDate": "2026-10-18T11:30:00Z",
					"status": "IN_PLAY",
					"competition": {"id": 2014, "name": "Primera Division", "code": "PD"},
					"homeTeam": {"id": 86, "name": "Real Madrid CF"},
					"awayTeam": {"id": 559, "name": "Sevilla FC"}
				}
			]
		}`)
	}))
	defer server.Close()

	client := New(&config.FootballDataConfig{URL: server.URL, APIKey: "test-token"})

	list, err := client.GetMatches(context.Background(), "2026-10-18", "2026-10-18")
	require.NoError(t, err)
	require.Len(t, list.Matches, 2)
	assert.Equal(t, 2, list.ResultSet.Count)

	first := list.Matches[0]
	assert.Equal(t, 501, first.ID)
	assert.Equal(t, StatusTimed, first.Status)
	assert.Equal(t, "Premier League", first.Competition.Name)
	assert.Equal(t, "Arsenal FC", first.HomeTeam.Name)
	assert.Equal(t, "Chelsea FC", first.AwayTeam.Name)
	assert.True(t, first.UTCDate.Equal(time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)))
}

func TestGetMatches_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message": "You reached your request limit."}`)
	}))
	defer server.Close()

	client := New(&config.FootballDataConfig{URL: server.URL, APIKey: "test-token"})

	_, err := client.GetMatches(context.Background(), "2026-10-18", "2026-10-18")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "request limit")
}

func TestGetMatches_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>maintenance</html>`)
	}))
	defer server.Close()

	client := New(&config.FootballDataConfig{URL: server.URL, APIKey: "test-token"})

	_, err := client.GetMatches(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding matches")
}
