// Package draft assembles the weekly CEO summary email: a structured
// payload for the text generation service, the prompt, and the mailto
// handoff. It never delivers mail itself.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/pharmalink/pharmalink/internal/reporting"
	"github.com/pharmalink/pharmalink/internal/shared"
)

// Generator is the opaque text generation dependency.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SitePayload is one pharmacy row in the summary payload.
type SitePayload struct {
	Name      string `json:"name"`
	Revenue   string `json:"revenue"`
	Submitted bool   `json:"submitted"`
}

// ServicePayload is one top-service row in the summary payload.
type ServicePayload struct {
	Name    string `json:"name"`
	Revenue string `json:"revenue"`
	Count   int    `json:"count"`
}

// Summary is the structured payload handed to the generation service.
type Summary struct {
	Week         string           `json:"week"`
	TotalRevenue string           `json:"totalRevenue"`
	WoWChange    string           `json:"wowChange"`
	Submitted    string           `json:"submitted"`
	OnTime       int              `json:"onTime"`
	Overdue      int              `json:"overdue"`
	Pharmacies   []SitePayload    `json:"pharmacies"`
	TopServices  []ServicePayload `json:"topServices"`
}

const topServiceCount = 5

// BuildSummary folds the aggregated week, its WoW delta and the
// compliance counters into the generation payload.
func BuildSummary(current reporting.WeekSummary, delta *reporting.Delta, counts reporting.ComplianceCounts) Summary {
	s := Summary{
		Week:         formatWeekLabel(current.Week),
		TotalRevenue: shared.FormatGBP(current.TotalRevenue),
		WoWChange:    "No prior week data",
		Submitted:    fmt.Sprintf("%d/%d", current.SubmittedCount, len(current.PerPharmacy)),
		OnTime:       counts.OnTime,
		Overdue:      counts.Overdue,
	}
	if delta != nil {
		s.WoWChange = fmt.Sprintf("%s %.1f%% vs prior week", arrowFor(delta.Direction), delta.Percent)
	}
	for _, slot := range current.PerPharmacy {
		site := SitePayload{Name: slot.Pharmacy, Submitted: slot.Submitted, Revenue: "Not submitted"}
		if slot.Submitted {
			site.Revenue = shared.FormatGBP(slot.Revenue)
		}
		s.Pharmacies = append(s.Pharmacies, site)
	}
	for i, st := range current.ServiceTotals {
		if i >= topServiceCount {
			break
		}
		s.TopServices = append(s.TopServices, ServicePayload{
			Name:    st.Service.Label,
			Revenue: shared.FormatGBP(st.Revenue),
			Count:   st.Count,
		})
	}
	return s
}

func arrowFor(d reporting.Direction) string {
	switch d {
	case reporting.DirectionUp:
		return "↑"
	case reporting.DirectionDown:
		return "↓"
	default:
		return "→"
	}
}

// Prompt renders the operations-analyst instruction around the payload.
func Prompt(s Summary) string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		data = []byte("{}")
	}
	return fmt.Sprintf(`You are a pharmacy group operations analyst. Write a professional, concise weekly performance summary email to the CEO of a UK independent pharmacy chain.
Use this data: %s
The email should: open with a warm professional greeting, lead with headline numbers, call out top-performing site, note any sites that haven't submitted, highlight top 2-3 services, end positively. Use British English. Under 300 words. Plain text, no markdown. Sign off as "Operations Team".`, data)
}

// Service generates drafts with fallback semantics.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService wires a Generator.
func NewService(generator Generator, logger *slog.Logger) *Service {
	return &Service{generator: generator, logger: logger}
}

// Draft is the generation result handed back to the caller.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Mailto  string `json:"mailto"`
	// Generated is false when Body holds fallback prose.
	Generated bool `json:"generated"`
}

// Generate produces the CEO email for a summary payload. Generation
// failures are not errors: the draft carries the fixed fallback text and
// the user may simply re-invoke.
func (s *Service) Generate(ctx context.Context, week reporting.WeekKey, summary Summary) Draft {
	subject := Subject(week)
	if s.generator == nil {
		return Draft{Subject: subject, Body: FallbackFailed, Mailto: Mailto(subject, FallbackFailed)}
	}
	body, err := s.generator.Generate(ctx, Prompt(summary))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("email generation failed", slog.Any("error", err))
		}
		fallback := FallbackFailed
		if errors.Is(err, ErrEmptyResponse) {
			fallback = FallbackEmpty
		}
		return Draft{Subject: subject, Body: fallback, Mailto: Mailto(subject, fallback)}
	}
	return Draft{Subject: subject, Body: body, Mailto: Mailto(subject, body), Generated: true}
}

// Subject builds the fixed email subject line for a week.
func Subject(week reporting.WeekKey) string {
	return fmt.Sprintf("Pharmacy Group — Weekly Report w/c %s", formatWeekLabel(week))
}

// Mailto builds a mailto: URI with percent-encoded subject and body.
func Mailto(subject, body string) string {
	return "mailto:?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// encodeComponent percent-encodes for a mailto query; spaces must be
// %20, not the '+' form mail clients mishandle.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func formatWeekLabel(week reporting.WeekKey) string {
	return week.Start().Format("2 Jan 2006")
}
