// Package gateway implements the HTTP client for a Bee (Swarm) gateway node.
// It covers the four operations the provenance tool needs: purchasing a
// postage batch, querying a batch's status, uploading envelope bytes to the
// bzz endpoint, and downloading them back by reference hash.
//
// Each operation is a single request/response round trip with its own
// timeout; retry policy lives with the callers (the stamp poller retries
// status queries, nothing else is retried).
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/swarmprov/swarmprov-go/pkg/config"
)

// ErrUnreachable indicates the gateway could not be reached or answered the
// request with an HTTP failure status.
var ErrUnreachable = errors.New("gateway unreachable")

// ErrMalformedResponse indicates the gateway answered successfully but the
// response body lacked a required field or could not be decoded.
var ErrMalformedResponse = errors.New("malformed gateway response")

// ErrNotFound indicates the gateway explicitly reported the requested
// resource as absent (HTTP 404). Callers display this distinctly and do not
// retry.
var ErrNotFound = errors.New("not found on gateway")

// Client talks to a single Bee gateway. It is stateless apart from the
// configured endpoint and timeouts and is safe for reuse across operations.
type Client struct {
	baseURL  string
	timeouts config.Timeouts
	http     *http.Client
}

// NewClient constructs a gateway client for the given base URL. Zero timeout
// fields are replaced with package defaults.
func NewClient(baseURL string, timeouts config.Timeouts) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeouts: timeouts.WithDefaults(),
		http:     &http.Client{},
	}
}

// url joins the base URL with an API path.
func (c *Client) url(path string) string {
	return c.baseURL + path
}

// do executes the request and classifies transport-level failures as
// ErrUnreachable. The caller owns the response body.
func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnreachable, err)
	}
	return resp, nil
}

// drainAndClose releases the response body so the underlying connection can
// be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

// opContext derives a per-operation context with the given timeout. A nil
// parent is tolerated and treated as context.Background().
func opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
