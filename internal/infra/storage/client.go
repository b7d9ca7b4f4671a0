package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"ai-content-scheduler/internal/config"
	"ai-content-scheduler/internal/domain/ports/adapter"
)

var (
	_ adapter.ObjectStore  = (*Client)(nil)
	_ adapter.AssetFetcher = (*Client)(nil)
)

// maxAssetBytes caps a single downloaded output (videos included).
const maxAssetBytes = 256 << 20

// Client implements upload-by-path and public-URL retrieval against the
// object-storage REST API, and doubles as the asset downloader.
type Client struct {
	base   string
	bucket string
	apiKey string
	client *http.Client
}

func NewClient(cfg config.StorageConfig) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Bucket == "" {
		return nil, errors.New("storage base url and bucket required")
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		bucket: cfg.Bucket,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Upload writes data under objectPath and returns the public URL.
func (c *Client) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	u := c.base + "/storage/v1/object/" + c.bucket + "/" + objectPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage http %d", resp.StatusCode)
	}
	return c.PublicURL(objectPath), nil
}

// PublicURL returns the unauthenticated retrieval URL for an object.
func (c *Client) PublicURL(objectPath string) string {
	return c.base + "/storage/v1/object/public/" + c.bucket + "/" + objectPath
}

// Fetch downloads a provider output asset.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, "", "", fmt.Errorf("download http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, "", "", err
	}
	if len(data) > maxAssetBytes {
		return nil, "", "", errors.New("asset exceeds size limit")
	}
	return data, resp.Header.Get("Content-Type"), extFromURL(rawURL), nil
}

func extFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(path.Ext(u.Path), ".")
}
