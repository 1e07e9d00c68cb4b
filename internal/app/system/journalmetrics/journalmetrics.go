// Package journalmetrics looks up journal impact metrics in the Elsevier
// Serial Title API.
package journalmetrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the Serial Title endpoint.
const DefaultBaseURL = "https://api.elsevier.com/content/serial/title"

// Views requested from the API. ENHANCED carries the metrics but needs an
// entitled key; STANDARD is the fallback.
const (
	ViewEnhanced = "ENHANCED"
	ViewStandard = "STANDARD"
)

var issnPattern = regexp.MustCompile(`^\d{4}-?\d{3}[\dXx]$`)

// StatusError is an upstream response outside the handled classes.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("elsevier api: unexpected status %d: %s", e.Status, e.Body)
}

// Metrics is what the admin panel shows for a journal.
type Metrics struct {
	Title         string   `json:"title"`
	ISSN          string   `json:"issn,omitempty"`
	EISSN         string   `json:"eIssn,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	SJR           *float64 `json:"sjr,omitempty"`
	SJRYear       string   `json:"sjrYear,omitempty"`
	SNIP          *float64 `json:"snip,omitempty"`
	SNIPYear      string   `json:"snipYear,omitempty"`
	CiteScore     *float64 `json:"citeScore,omitempty"`
	CiteScoreYear string   `json:"citeScoreYear,omitempty"`
	View          string   `json:"view"`
}

// Client queries the Serial Title API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Log     *zap.Logger
}

// New returns a Client. An empty baseURL uses DefaultBaseURL.
func New(apiKey, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Log:     logger,
	}
}

// Search looks up a journal by title or ISSN. It asks for the ENHANCED view
// and, if the key is not entitled to it (401/403), retries once with
// STANDARD. Not-found and invalid-query responses yield (nil, nil); any
// other failure is an error.
func (c *Client) Search(ctx context.Context, query string) (*Metrics, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if c.APIKey == "" {
		return nil, errors.New("elsevier api key is not configured")
	}

	m, status, err := c.fetch(ctx, query, ViewEnhanced)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.Log.Info("journal metrics: enhanced view refused, retrying with standard",
			zap.Int("status", status))
		m, _, err = c.fetch(ctx, query, ViewStandard)
	}
	return m, err
}

func (c *Client) fetch(ctx context.Context, query, view string) (*Metrics, int, error) {
	q := url.Values{}
	if issnPattern.MatchString(query) {
		q.Set("issn", strings.ReplaceAll(query, "-", ""))
	} else {
		q.Set("title", query)
	}
	q.Set("view", view)
	q.Set("httpAccept", "application/json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ELS-APIKey", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("elsevier api: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return nil, resp.StatusCode, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload serialResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("elsevier api: decode: %w", err)
	}
	entries := payload.Response.Entry
	if len(entries) == 0 || entries[0].Error != "" {
		return nil, resp.StatusCode, nil
	}
	m := entries[0].metrics()
	m.View = view
	return m, resp.StatusCode, nil
}

type yearValue struct {
	Year  string `json:"@year"`
	Value string `json:"$"`
}

type serialEntry struct {
	Error     string `json:"error"`
	Title     string `json:"dc:title"`
	ISSN      string `json:"prism:issn"`
	EISSN     string `json:"prism:eIssn"`
	Publisher string `json:"dc:publisher"`
	SJRList   struct {
		SJR []yearValue `json:"SJR"`
	} `json:"SJRList"`
	SNIPList struct {
		SNIP []yearValue `json:"SNIP"`
	} `json:"SNIPList"`
	CiteScore struct {
		Current     string `json:"citeScoreCurrentMetric"`
		CurrentYear string `json:"citeScoreCurrentMetricYear"`
	} `json:"citeScoreYearInfoList"`
}

type serialResponse struct {
	Response struct {
		Entry []serialEntry `json:"entry"`
	} `json:"serial-metadata-response"`
}

func (e serialEntry) metrics() *Metrics {
	m := &Metrics{
		Title:     e.Title,
		ISSN:      e.ISSN,
		EISSN:     e.EISSN,
		Publisher: e.Publisher,
	}
	if len(e.SJRList.SJR) > 0 {
		m.SJR, m.SJRYear = parseFloat(e.SJRList.SJR[0].Value), e.SJRList.SJR[0].Year
	}
	if len(e.SNIPList.SNIP) > 0 {
		m.SNIP, m.SNIPYear = parseFloat(e.SNIPList.SNIP[0].Value), e.SNIPList.SNIP[0].Year
	}
	if e.CiteScore.Current != "" {
		m.CiteScore, m.CiteScoreYear = parseFloat(e.CiteScore.Current), e.CiteScore.CurrentYear
	}
	return m
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
