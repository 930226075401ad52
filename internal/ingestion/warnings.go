package ingestion

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/yakshaver/go-tide-times/internal/models"
	"github.com/yakshaver/go-tide-times/internal/observability"
	"github.com/yakshaver/go-tide-times/internal/repository"
)

const metaLastModified = "LastModified"

var (
	awarenessLevelRe = regexp.MustCompile(`^(\d+);`)
	seaAreaCodeRe    = regexp.MustCompile(`^EI8\d{2}$`)
)

// WarningCache keeps the WeatherWarnings table in sync with the Met Éireann
// RSS feed and its per-item CAP detail documents. Warnings are enrichment:
// every network and parse failure is logged and swallowed, leaving the
// previously cached state in place.
type WarningCache struct {
	repo    repository.WarningRepository
	feedURL string
	client  *http.Client
}

func NewWarningCache(repo repository.WarningRepository, feedURL string) *WarningCache {
	return &WarningCache{
		repo:    repo,
		feedURL: feedURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureUpdated refreshes the cached warning set if the feed changed. A HEAD
// request with If-Modified-Since avoids refetching an unchanged feed; when a
// refresh does happen the stored set is fully reconciled with the feed, and
// the new Last-Modified token is stored even when the feed carried nothing.
func (c *WarningCache) EnsureUpdated(ctx context.Context) {
	cached, err := c.repo.GetMeta(ctx, metaLastModified)
	if err != nil {
		slog.Warn("warning freshness lookup failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.feedURL, nil)
	if err != nil {
		slog.Warn("warning feed request failed", "error", err)
		return
	}
	if cached != "" {
		req.Header.Set("If-Modified-Since", cached)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("warning feed check failed", "error", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		observability.IncWarningNotModified()
		return
	}
	if resp.StatusCode != http.StatusOK {
		slog.Warn("warning feed check returned error status", "status", resp.StatusCode)
		return
	}

	lastModified := resp.Header.Get("Last-Modified")
	if cached != "" && lastModified == cached {
		observability.IncWarningNotModified()
		return
	}

	c.refresh(ctx, lastModified)
}

func (c *WarningCache) refresh(ctx context.Context, lastModified string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		slog.Warn("warning feed request failed", "error", err)
		return
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("warning feed fetch failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("warning feed returned error status", "status", resp.StatusCode)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("warning feed read failed", "error", err)
		return
	}

	items, err := parseFeed(body)
	if err != nil {
		slog.Warn("warning feed parse failed", "error", err)
		return
	}

	observability.IncWarningRefresh()

	if len(items) == 0 {
		// Empty feed means no active warnings anywhere.
		if err := c.repo.DeleteAllWarnings(ctx); err != nil {
			slog.Warn("warning cache clear failed", "error", err)
			return
		}
		c.storeToken(ctx, lastModified)
		return
	}

	retrievedAt := time.Now().UTC().Truncate(time.Second)
	var current []string

	for _, item := range items {
		if item.Link == "" {
			continue
		}

		warning := c.fetchDetail(ctx, item.Link)
		if warning == nil {
			continue
		}
		warning.RetrievedAt = retrievedAt

		if err := c.repo.UpsertWarning(ctx, warning); err != nil {
			slog.Warn("warning upsert failed", "identifier", warning.Identifier, "error", err)
			continue
		}
		current = append(current, warning.Identifier)
	}

	if len(current) > 0 {
		if err := c.repo.DeleteWarningsNotIn(ctx, current); err != nil {
			slog.Warn("warning prune failed", "error", err)
		}
	}

	c.storeToken(ctx, lastModified)
}

func (c *WarningCache) storeToken(ctx context.Context, lastModified string) {
	if lastModified == "" {
		return
	}
	if err := c.repo.SetMeta(ctx, metaLastModified, lastModified); err != nil {
		slog.Warn("warning freshness store failed", "error", err)
	}
}

func (c *WarningCache) fetchDetail(ctx context.Context, capURL string) *models.WeatherWarning {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, capURL, nil)
	if err != nil {
		slog.Warn("warning detail request failed", "url", capURL, "error", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("warning detail fetch failed", "url", capURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("warning detail read failed", "url", capURL, "error", err)
		return nil
	}

	warning, err := parseCAP(body)
	if err != nil {
		slog.Warn("warning detail parse failed", "url", capURL, "error", err)
		return nil
	}
	return warning
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
}

// parseFeed decodes the warnings RSS index. The feed declares a charset that
// does not match its bytes, so the declaration is ignored and the body read
// as-is.
func parseFeed(body []byte) ([]rssItem, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = passthroughCharset

	var feed rssFeed
	if err := dec.Decode(&feed); err != nil {
		return nil, err
	}
	return feed.Channel.Items, nil
}

func passthroughCharset(charset string, input io.Reader) (io.Reader, error) {
	return input, nil
}

type capAlert struct {
	Identifier string    `xml:"identifier"`
	Infos      []capInfo `xml:"info"`
}

type capInfo struct {
	Category    string          `xml:"category"`
	Event       string          `xml:"event"`
	Severity    string          `xml:"severity"`
	Onset       string          `xml:"onset"`
	Expires     string          `xml:"expires"`
	Headline    string          `xml:"headline"`
	Description string          `xml:"description"`
	Parameters  []capNamedValue `xml:"parameter"`
	Area        struct {
		Geocodes []capNamedValue `xml:"geocode"`
	} `xml:"area"`
}

type capNamedValue struct {
	ValueName string `xml:"valueName"`
	Value     string `xml:"value"`
}

// parseCAP extracts one warning from a CAP alert document. Bilingual alerts
// carry one info block per language with English first; only the first block
// is read. Category is Weather unless the event is a small craft advisory or,
// for Met alerts, an area geocode names a sea area. The awareness level is
// the leading integer of the structured awareness_level parameter
// ("2; yellow; Moderate").
func parseCAP(body []byte) (*models.WeatherWarning, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = passthroughCharset

	var alert capAlert
	if err := dec.Decode(&alert); err != nil {
		return nil, err
	}
	if alert.Identifier == "" || len(alert.Infos) == 0 || alert.Infos[0].Event == "" {
		return nil, fmt.Errorf("alert missing identifier or info block")
	}

	info := alert.Infos[0]

	awarenessLevel := 0
	for _, p := range info.Parameters {
		if p.ValueName != "awareness_level" {
			continue
		}
		if m := awarenessLevelRe.FindStringSubmatch(p.Value); m != nil {
			awarenessLevel, _ = strconv.Atoi(m[1])
		}
		break
	}

	var areaCodes []string
	for _, g := range info.Area.Geocodes {
		if g.ValueName == "FIPS" || g.ValueName == "EMMA_ID" {
			areaCodes = append(areaCodes, g.Value)
		}
	}

	w := &models.WeatherWarning{
		Identifier:     alert.Identifier,
		Event:          info.Event,
		Category:       models.WarningWeather,
		Headline:       info.Headline,
		Description:    info.Description,
		Severity:       info.Severity,
		AwarenessLevel: awarenessLevel,
		AreaCodes:      areaCodes,
	}

	if w.IsSmallCraft() {
		w.Category = models.WarningMarine
	} else if info.Category == "Met" {
		for _, code := range areaCodes {
			if seaAreaCodeRe.MatchString(code) {
				w.Category = models.WarningMarine
				break
			}
		}
	}

	var err error
	if w.Onset, err = parseCAPTime(info.Onset); err != nil {
		return nil, fmt.Errorf("alert %s onset %q invalid: %w", alert.Identifier, info.Onset, err)
	}
	if w.Expires, err = parseCAPTime(info.Expires); err != nil {
		return nil, fmt.Errorf("alert %s expiry %q invalid: %w", alert.Identifier, info.Expires, err)
	}

	return w, nil
}

func parseCAPTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ForStation resolves the warnings applicable to a station per calendar day
// in [start, end]. Only Marine or small craft warnings whose area codes
// intersect the station's are considered; when none do the result is empty.
// Otherwise every day in range is present: a first-seen small craft flag and
// the icon of the highest awareness level weather warning, nil when quiet.
func (c *WarningCache) ForStation(ctx context.Context, stationID string, start, end time.Time) (map[string]models.DayWarning, error) {
	stationCodes, err := c.repo.StationAreaCodes(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if len(stationCodes) == 0 {
		return map[string]models.DayWarning{}, nil
	}

	rangeEnd := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	warnings, err := c.repo.ListMarineWarnings(ctx, start, rangeEnd)
	if err != nil {
		return nil, err
	}

	codeSet := make(map[string]bool, len(stationCodes))
	for _, code := range stationCodes {
		codeSet[code] = true
	}

	var matched []models.WeatherWarning
	for _, w := range warnings {
		for _, code := range w.AreaCodes {
			if codeSet[code] {
				matched = append(matched, w)
				break
			}
		}
	}
	if len(matched) == 0 {
		return map[string]models.DayWarning{}, nil
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, dayString(d))
	}

	result := make(map[string]models.DayWarning, len(days))
	maxLevel := make(map[string]int, len(days))
	for _, day := range days {
		result[day] = models.DayWarning{}
	}

	smallCraftIcon := "small-craft"
	for _, w := range matched {
		onsetDay := dayString(w.Onset)
		expiresDay := dayString(w.Expires)

		for _, day := range days {
			if day < onsetDay || day > expiresDay {
				continue
			}

			dw := result[day]
			if w.IsSmallCraft() {
				if dw.SmallCraft == nil {
					dw.SmallCraft = &smallCraftIcon
				}
			} else if w.AwarenessLevel > maxLevel[day] {
				icon := models.SeverityIcon(w.Severity)
				dw.Weather = &icon
				maxLevel[day] = w.AwarenessLevel
			}
			result[day] = dw
		}
	}

	return result, nil
}
