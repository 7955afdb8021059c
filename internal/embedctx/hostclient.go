package embedctx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/winsznx/celo-guestbook/internal/identity"
)

// HostClient talks to the embedding surface's context endpoint.
type HostClient struct {
	baseURL string
	http    *http.Client
}

func NewHostClient(baseURL string) *HostClient {
	return &HostClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

var _ Host = (*HostClient)(nil)

func (c *HostClient) Context(ctx context.Context) (*identity.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/host/context", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("host returned %d", resp.StatusCode)
	}
	var out struct {
		User *identity.Identity `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HostClient) DismissSplash(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/host/ready", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("host returned %d", resp.StatusCode)
	}
	return nil
}
