// Package relay forwards SEP-0007 URIs to the external MMWB signing
// service, which answers with a Telegram link the user opens to sign. It is
// a thin pass-through; the relay never sees a secret key.
package relay

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/panarchynow/initiation/internal/metrics"
	"github.com/panarchynow/initiation/internal/sep7"
)

// DefaultEndpoint is the public MMWB SEP-0007 intake.
const DefaultEndpoint = "https://eurmtl.me/remote/sep07/add"

// Client posts signing URIs to the relay endpoint.
type Client struct {
	http     *resty.Client
	endpoint string
}

// New creates a relay client. An empty endpoint selects DefaultEndpoint.
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{http: c, endpoint: endpoint}
}

type addRequest struct {
	URI string `json:"uri"`
}

type addResponse struct {
	URL string `json:"url"`
}

// AddURI submits a web+stellar URI and returns the signing URL the relay
// produced. Any non-2xx status or a response without a URL is an error.
func (c *Client) AddURI(ctx context.Context, uri string) (string, error) {
	if !strings.HasPrefix(uri, sep7.Scheme) {
		return "", fmt.Errorf("invalid Stellar URI format")
	}

	var result addResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(addRequest{URI: uri}).
		SetResult(&result).
		Post(c.endpoint)
	if err != nil {
		metrics.RelayRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("relay request failed: %w", err)
	}
	if resp.IsError() {
		metrics.RelayRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("relay returned %s", resp.Status())
	}
	if result.URL == "" {
		metrics.RelayRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("relay response is missing the signing URL")
	}

	metrics.RelayRequests.WithLabelValues("ok").Inc()
	return result.URL, nil
}

// EnsureReturnURL appends a return_url parameter when the URI has none, so
// the wallet can navigate the user back after signing.
func EnsureReturnURL(uri, returnURL string) string {
	if returnURL == "" || strings.Contains(uri, "return_url=") {
		return uri
	}
	separator := "?"
	if strings.Contains(uri, "?") {
		separator = "&"
	}
	return uri + separator + "return_url=" + url.QueryEscape(returnURL)
}
