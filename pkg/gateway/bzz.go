package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// PostageBatchHeader is the request header carrying the postage batch id
// that authorizes an upload.
const PostageBatchHeader = "Swarm-Postage-Batch-Id"

// uploadResponse is the wire shape of a successful bzz upload.
type uploadResponse struct {
	Reference string `json:"reference"`
}

// Upload sends data to the gateway's bzz endpoint, authorized by the given
// postage batch id (lower-cased for the wire header), and returns the Swarm
// reference hash under which the content is addressable.
func (c *Client) Upload(ctx context.Context, data []byte, stampID, contentType string) (string, error) {
	ctx, cancel := opContext(ctx, c.timeouts.Upload)
	defer cancel()

	zap.L().Debug("uploading to bzz",
		zap.Int("size", len(data)),
		zap.String("stampID", stampID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/bzz"), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	req.Header.Set(PostageBatchHeader, strings.ToLower(stampID))
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req, "upload")
	if err != nil {
		return "", err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload: %w: gateway returned HTTP %d", ErrUnreachable, resp.StatusCode)
	}

	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return "", fmt.Errorf("upload: %w: %v", ErrMalformedResponse, err)
	}
	if upload.Reference == "" {
		return "", fmt.Errorf("upload: %w: response missing reference", ErrMalformedResponse)
	}

	zap.L().Debug("upload accepted", zap.String("reference", upload.Reference))
	return upload.Reference, nil
}

// Download fetches previously uploaded bytes by reference hash. An HTTP 404
// is reported as ErrNotFound, distinct from connectivity failures, so the
// caller can present it without suggesting a retry.
func (c *Client) Download(ctx context.Context, reference string) ([]byte, error) {
	ctx, cancel := opContext(ctx, c.timeouts.Download)
	defer cancel()

	zap.L().Debug("downloading from bzz", zap.String("reference", reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/bzz/"+reference), nil)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	resp, err := c.do(req, "download")
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("download: %w: reference %s", ErrNotFound, reference)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download: %w: gateway returned HTTP %d", ErrUnreachable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download: %w: reading body: %v", ErrUnreachable, err)
	}
	return data, nil
}
