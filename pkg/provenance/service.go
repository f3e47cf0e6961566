// Package provenance wires the content codec, envelope model, gateway client,
// and stamp poller into the two top-level operations of the tool: uploading a
// provenance file to Swarm and downloading + verifying it again.
package provenance

import (
	"context"
	"errors"

	"github.com/swarmprov/swarmprov-go/pkg/config"
	"github.com/swarmprov/swarmprov-go/pkg/gateway"
)

// ErrIO indicates a local file read or write failed.
var ErrIO = errors.New("local i/o failure")

// ErrIntegrityMismatch indicates the recomputed hash of downloaded content
// did not match the hash stored in its envelope. Always fatal, never a
// warning: the decoded bytes are persisted only under an UNVERIFIED name.
var ErrIntegrityMismatch = errors.New("content hash verification failed")

// Gateway is the slice of the Bee gateway client the orchestrators depend
// on. *gateway.Client satisfies it.
type Gateway interface {
	PurchaseStamp(ctx context.Context, depth int, amount int64) (string, error)
	GetStampStatus(ctx context.Context, stampID string) (gateway.StampStatus, bool, error)
	Upload(ctx context.Context, data []byte, stampID, contentType string) (string, error)
	Download(ctx context.Context, reference string) ([]byte, error)
}

// Service runs uploads and downloads against one configured gateway.
type Service struct {
	cfg *config.Config
	gw  Gateway
}

// New constructs a Service with validated configuration and a gateway client
// bound to the configured endpoint.
func New(cfg *config.Config) *Service {
	_ = cfg.Validate()
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	return &Service{
		cfg: cfg,
		gw:  gateway.NewClient(cfg.GatewayURL, cfg.Timeouts),
	}
}
