package draft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalink/pharmalink/internal/catalog"
	"github.com/pharmalink/pharmalink/internal/reporting"
)

func fixtureSummary(t *testing.T) reporting.WeekSummary {
	t.Helper()
	ten := 10.0
	cat := catalog.New([]catalog.Service{
		{ID: "fixed_ten", Label: "Fixed Ten", Fee: &ten, Category: catalog.CategoryNHSClinical},
		{ID: "variable", Label: "Variable", Fee: nil, Category: catalog.CategoryPrivateClinics},
	}, []string{"Alpha Pharmacy", "Beta Pharmacy"})
	week, err := reporting.ParseWeek("2024-03-11")
	require.NoError(t, err)
	return reporting.Aggregate(cat, week, []reporting.WeeklySubmission{{
		Pharmacy: "Alpha Pharmacy",
		Week:     week,
		Counts:   map[string]int{"fixed_ten": 3},
		Revenues: map[string]float64{"variable": 25},
	}})
}

func TestBuildSummary(t *testing.T) {
	current := fixtureSummary(t)
	delta := &reporting.Delta{Direction: reporting.DirectionUp, Percent: 5.0}
	counts := reporting.ComplianceCounts{OnTime: 1, Overdue: 1}

	s := BuildSummary(current, delta, counts)

	assert.Equal(t, "11 Mar 2024", s.Week)
	assert.Equal(t, "£55.00", s.TotalRevenue)
	assert.Equal(t, "↑ 5.0% vs prior week", s.WoWChange)
	assert.Equal(t, "1/2", s.Submitted)
	assert.Equal(t, 1, s.OnTime)
	assert.Equal(t, 1, s.Overdue)

	require.Len(t, s.Pharmacies, 2)
	assert.Equal(t, "£55.00", s.Pharmacies[0].Revenue)
	assert.Equal(t, "Not submitted", s.Pharmacies[1].Revenue)
	assert.False(t, s.Pharmacies[1].Submitted)

	require.NotEmpty(t, s.TopServices)
	assert.Equal(t, "Fixed Ten", s.TopServices[0].Name)
	assert.Equal(t, 3, s.TopServices[0].Count)
}

func TestBuildSummaryNoPriorWeek(t *testing.T) {
	s := BuildSummary(fixtureSummary(t), nil, reporting.ComplianceCounts{})
	assert.Equal(t, "No prior week data", s.WoWChange)
}

func TestGenerateHappyPath(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		gotPrompt = req.Messages[0].Content
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"text":"Dear CEO,"},{"text":" a good week."}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	svc := NewService(client, nil)

	week, _ := reporting.ParseWeek("2024-03-11")
	summary := BuildSummary(fixtureSummary(t), nil, reporting.ComplianceCounts{})
	d := svc.Generate(context.Background(), week, summary)

	assert.True(t, d.Generated)
	assert.Equal(t, "Dear CEO, a good week.", d.Body)
	assert.Equal(t, "Pharmacy Group — Weekly Report w/c 11 Mar 2024", d.Subject)
	assert.Contains(t, gotPrompt, "British English")
	assert.Contains(t, gotPrompt, "£55.00")
}

func TestGenerateFallbacks(t *testing.T) {
	week, _ := reporting.ParseWeek("2024-03-11")
	summary := BuildSummary(fixtureSummary(t), nil, reporting.ComplianceCounts{})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer server.Close()

		svc := NewService(NewClient(server.URL, "", "m"), nil)
		d := svc.Generate(context.Background(), week, summary)
		assert.False(t, d.Generated)
		assert.Equal(t, FallbackFailed, d.Body)
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content":[]}`))
		}))
		defer server.Close()

		svc := NewService(NewClient(server.URL, "", "m"), nil)
		d := svc.Generate(context.Background(), week, summary)
		assert.False(t, d.Generated)
		assert.Equal(t, FallbackEmpty, d.Body)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		svc := NewService(NewClient(server.URL, "", "m"), nil)
		d := svc.Generate(context.Background(), week, summary)
		assert.False(t, d.Generated)
		assert.Equal(t, FallbackFailed, d.Body)
	})
}

func TestMailtoEncoding(t *testing.T) {
	uri := Mailto("Pharmacy Group — Weekly Report w/c 11 Mar 2024", "Line one\nLine two & totals")
	assert.True(t, strings.HasPrefix(uri, "mailto:?subject="))
	assert.NotContains(t, uri, " ")
	assert.NotContains(t, uri, "+")
	assert.Contains(t, uri, "%20")
	assert.Contains(t, uri, "&body=Line%20one%0ALine%20two%20%26%20totals")
}
