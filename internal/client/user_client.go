// Package client 封装对档案服务的远程只读访问。
// 每次调用固定超时，调用方按可降级失败对待。
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/d60-Lab/social-feed/internal/service"
)

var _ service.ProfileClient = (*UserClient)(nil)

// ErrProfileNotFound 档案服务返回 404
var ErrProfileNotFound = fmt.Errorf("profile not found")

type UserClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &UserClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// envelope 档案服务的统一返回结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *UserClient) Profile(ctx context.Context, userID string) (*service.Profile, error) {
	var p service.Profile
	if err := c.get(ctx, "/users/"+userID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *UserClient) Following(ctx context.Context, userID string) ([]string, error) {
	var out struct {
		UserID    string   `json:"userId"`
		Count     int      `json:"count"`
		Following []string `json:"following"`
	}
	if err := c.get(ctx, "/users/"+userID+"/following", &out); err != nil {
		return nil, err
	}
	return out.Following, nil
}

func (c *UserClient) get(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("user service %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("user service %s: %w", path, ErrProfileNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("user service %s: unexpected status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("user service %s: decode: %w", path, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("user service %s: decode data: %w", path, err)
	}
	return nil
}
