package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/usecase"
)

// Client talks to the remote media service over HTTP. Every call carries a
// bounded timeout through its context plus the client-level timeout; a
// timeout is reported as a plain error like any other failure.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, timeout time.Duration, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("object store base URL is required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

type uploadResponse struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

// Upload pushes a binary and returns the store's reference for it.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (domain.AssetRef, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.AssetRef{}, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return domain.AssetRef{}, err
	}
	if _, err := part.Write(data); err != nil {
		return domain.AssetRef{}, err
	}
	if err := mw.Close(); err != nil {
		return domain.AssetRef{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/assets", &body)
	if err != nil {
		return domain.AssetRef{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuth(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return domain.AssetRef{}, err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return domain.AssetRef{}, statusError("upload", resp.StatusCode)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.AssetRef{}, err
	}
	if out.AssetID == "" {
		return domain.AssetRef{}, fmt.Errorf("object store returned an empty asset id")
	}

	return domain.AssetRef{AssetID: out.AssetID, URL: out.URL}, nil
}

// Delete removes an asset. Deleting an already gone asset is not an error;
// the reconciler's teardown is idempotent that way.
func (c *Client) Delete(ctx context.Context, assetID string) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/assets/%s", c.base, assetID), nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return statusError("delete", resp.StatusCode)
	}
}

// Ping verifies the media service answers at all; used by the monitor.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	if err != nil {
		return err
	}
	c.setAuth(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return statusError("ping", resp.StatusCode)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
}

func statusError(op string, status int) error {
	return fmt.Errorf("object store %s failed with status %d", op, status)
}

var _ usecase.ObjectStore = (*Client)(nil)
