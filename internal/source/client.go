package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Roi-salemm/lunaris/internal/constants"
	"github.com/Roi-salemm/lunaris/internal/domain"
	"github.com/Roi-salemm/lunaris/internal/httpclient"
)

var clientLogger = slog.Default().WithGroup("source")

// Client is the HTTP implementation of Provider against the ephemeris API's
// three range endpoints.
type Client struct {
	BaseURL string
	HTTP    *httpclient.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    httpclient.NewClient(nil, constants.MinRequestInterval),
	}
}

func (c *Client) FetchEphemeris(ctx context.Context, w domain.Window) ([]domain.EphemerisRow, error) {
	var payload itemsPayload
	if err := c.getRange(ctx, "/api/ephemeris", w, &payload); err != nil {
		return nil, err
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("%w: ephemeris response is missing the items array", ErrMalformedPayload)
	}
	return convertEphemeris(*payload.Items)
}

func (c *Client) FetchPhaseEvents(ctx context.Context, w domain.Window) ([]domain.PhaseEventRow, error) {
	var payload eventsPayload
	if err := c.getRange(ctx, "/api/phase-events", w, &payload); err != nil {
		return nil, err
	}
	if payload.PhaseEvents == nil {
		return nil, fmt.Errorf("%w: response is missing the phase_events array", ErrMalformedPayload)
	}
	return convertPhaseEvents(*payload.PhaseEvents)
}

func (c *Client) FetchCanonical(ctx context.Context, w domain.Window) ([]domain.CanonicalRow, error) {
	var payload itemsPayload
	if err := c.getRange(ctx, "/api/canonical", w, &payload); err != nil {
		return nil, err
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("%w: canonical response is missing the items array", ErrMalformedPayload)
	}
	return convertCanonical(*payload.Items)
}

func (c *Client) getRange(ctx context.Context, path string, w domain.Window, target interface{}) error {
	u := fmt.Sprintf("%s%s?start=%s&end=%s",
		c.BaseURL, path,
		url.QueryEscape(w.StartKey()), url.QueryEscape(w.EndKey()))

	clientLogger.Debug("API request", "url", u)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ephemeris API returned status %d: %s", resp.StatusCode, string(detail))
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

var _ Provider = (*Client)(nil)
