// Package accesslink retrieves raw entities from the Polar AccessLink v3 REST
// API and fans out per-day activity requests in bounded batches.
package accesslink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	digest "github.com/lucasjlepore/polar-digest"
)

// DefaultBaseURL is the public AccessLink endpoint.
const DefaultBaseURL = "https://www.polaraccesslink.com"

// ErrNotFound is returned when the upstream has no data for the request.
var ErrNotFound = errors.New("accesslink: no data")

// Client is an AccessLink client authenticated with a pre-issued bearer
// token. It never retries.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a client for baseURL. A zero timeout keeps resty's default.
func NewClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(accessToken).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}
	return &Client{http: httpClient, logger: logger}
}

// Exercise fetches one exercise including its sample blocks.
func (c *Client) Exercise(ctx context.Context, id string) (digest.Exercise, error) {
	var out digest.Exercise
	err := c.get(ctx, "/v3/exercises/{id}", map[string]string{"id": id}, map[string]string{"samples": "true"}, &out)
	return out, err
}

// SleepNight fetches the sleep night ending on date (YYYY-MM-DD).
func (c *Client) SleepNight(ctx context.Context, date string) (digest.SleepNight, error) {
	var out digest.SleepNight
	err := c.get(ctx, "/v3/users/sleep/{date}", map[string]string{"date": date}, nil, &out)
	return out, err
}

// RechargeNight fetches the nightly recharge for date.
func (c *Client) RechargeNight(ctx context.Context, date string) (digest.RechargeNight, error) {
	var out digest.RechargeNight
	err := c.get(ctx, "/v3/users/nightly-recharge/{date}", map[string]string{"date": date}, nil, &out)
	return out, err
}

// HeartRateDay fetches the continuous heart rate of date.
func (c *Client) HeartRateDay(ctx context.Context, date string) (digest.HeartRateDay, error) {
	var out digest.HeartRateDay
	err := c.get(ctx, "/v3/users/continuous-heart-rate/{date}", map[string]string{"date": date}, nil, &out)
	return out, err
}

// ActivityDay fetches the daily activity totals for date.
func (c *Client) ActivityDay(ctx context.Context, date string) (digest.ActivityDay, error) {
	var out digest.ActivityDay
	err := c.get(ctx, "/v3/users/activities/{date}", map[string]string{"date": date}, nil, &out)
	if err == nil && out.Date == "" {
		out.Date = date
	}
	return out, err
}

// ActivitySamples fetches the step and activity-zone samples for date.
func (c *Client) ActivitySamples(ctx context.Context, date string) (*digest.ActivitySamples, error) {
	var out digest.ActivitySamples
	if err := c.get(ctx, "/v3/users/activities/samples/{date}", map[string]string{"date": date}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, pathParams, query map[string]string, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetResult(out)
	if len(pathParams) > 0 {
		req.SetPathParams(pathParams)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	switch {
	case resp.StatusCode() == 204 || resp.StatusCode() == 404:
		return fmt.Errorf("%s: %w", resp.Request.URL, ErrNotFound)
	case resp.IsError():
		c.logger.Debug("accesslink error response",
			zap.String("url", resp.Request.URL),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("%s: unexpected status %d", resp.Request.URL, resp.StatusCode())
	}
	return nil
}
