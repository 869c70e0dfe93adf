package apiclient

import (
	"context"
	"net/http"

	"github.com/Rrens/smart-assistant/internal/domain"
)

// CheckHealth calls the health endpoint, which lives at the origin root
func (c *Client) CheckHealth(ctx context.Context) (*domain.HealthCheckResponse, error) {
	var health domain.HealthCheckResponse
	if err := c.do(ctx, http.MethodGet, c.origin+"/health", nil, false, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// BasicInfo calls the root endpoint
func (c *Client) BasicInfo(ctx context.Context) (*domain.RootInfo, error) {
	var info domain.RootInfo
	if err := c.do(ctx, http.MethodGet, c.origin+"/", nil, false, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
