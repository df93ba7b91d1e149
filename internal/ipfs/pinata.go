// Package ipfs uploads files to the Pinata content-addressed store. The
// rest of the system only consumes the returned CID as a form field.
package ipfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/panarchynow/initiation/internal/metrics"
)

// DefaultEndpoint is Pinata's v3 file upload API.
const DefaultEndpoint = "https://uploads.pinata.cloud/v3/files"

// MaxFileSize caps uploads at 1 MiB.
const MaxFileSize = 1 << 20

// ErrFileTooLarge is returned for uploads beyond MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds the 1 MiB upload limit")

// Client uploads files to Pinata.
type Client struct {
	http     *resty.Client
	endpoint string
}

// New creates an upload client authenticated with a Pinata JWT. An empty
// endpoint selects DefaultEndpoint.
func New(endpoint, jwt string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := resty.New().
		SetAuthToken(jwt).
		SetTimeout(2 * time.Minute)

	return &Client{http: c, endpoint: endpoint}
}

type uploadResponse struct {
	Data struct {
		CID  string `json:"cid"`
		Name string `json:"name"`
		Size int64  `json:"size"`
	} `json:"data"`
}

// Upload stores the file and returns its content identifier. The size cap
// is enforced locally before any bytes leave the process.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	var result uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		SetResult(&result).
		Post(c.endpoint)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("ipfs").Inc()
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	if resp.IsError() {
		metrics.ErrorsTotal.WithLabelValues("ipfs").Inc()
		return "", fmt.Errorf("content store returned %s", resp.Status())
	}
	if result.Data.CID == "" {
		metrics.ErrorsTotal.WithLabelValues("ipfs").Inc()
		return "", fmt.Errorf("content store response is missing the CID")
	}

	metrics.UploadBytes.Observe(float64(len(data)))
	return result.Data.CID, nil
}
