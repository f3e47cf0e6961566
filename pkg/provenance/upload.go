package provenance

import (
	"context"
	"fmt"
	"os"

	"github.com/swarmprov/swarmprov-go/pkg/codec"
	"github.com/swarmprov/swarmprov-go/pkg/envelope"
	"github.com/swarmprov/swarmprov-go/pkg/gateway"
	"github.com/swarmprov/swarmprov-go/pkg/stamp"
	"go.uber.org/zap"
)

// envelopeContentType is the MIME type the envelope is uploaded under.
const envelopeContentType = "application/json"

// UploadOptions carries the optional envelope tags.
type UploadOptions struct {
	// ProvenanceStandard names the standard the wrapped data follows
	// (e.g. "PROV-O"). Empty means the tag is omitted from the envelope.
	ProvenanceStandard string
	// Encryption describes the encryption applied to the original data
	// before wrapping. Empty means the tag is omitted.
	Encryption string
}

// Upload reads the file at path, wraps it in a provenance envelope, pays for
// storage, waits for the stamp to become usable, and uploads the envelope.
// It returns the Swarm reference hash of the uploaded envelope.
func (s *Service) Upload(ctx context.Context, path string, opts UploadOptions) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}
	zap.L().Info("processing file", zap.String("path", path), zap.Int("size", len(raw)))

	return s.UploadBytes(ctx, raw, opts)
}

// UploadBytes runs the upload pipeline over in-memory content. Each stage
// fails fast; nothing is uploaded unless the stamp reached usable.
func (s *Service) UploadBytes(ctx context.Context, raw []byte, opts UploadOptions) (string, error) {
	contentHash := codec.Hash(raw)
	encoded := codec.Encode(raw)
	zap.L().Info("content hashed", zap.String("sha256", contentHash))

	// Placeholder envelope, built solely to report the upload payload size
	// before money is spent. The placeholder id has the same length as a
	// real batch id, so the size is exact.
	sized := envelope.Build(encoded, contentHash, envelope.PlaceholderStampID,
		opts.ProvenanceStandard, opts.Encryption)
	payload, err := envelope.Serialize(sized)
	if err != nil {
		return "", fmt.Errorf("preparing envelope: %w", err)
	}
	zap.L().Info("estimated payload size", zap.Int("bytes", len(payload)))

	cost := gateway.EstimateBatchCost(s.cfg.Depth, s.cfg.Amount)
	zap.L().Info("purchasing postage stamp",
		zap.String("gateway", s.cfg.GatewayURL),
		zap.Int("depth", s.cfg.Depth),
		zap.Int64("amount", s.cfg.Amount),
		zap.String("estimatedCostBZZ", cost.String()))

	stampID, err := s.gw.PurchaseStamp(ctx, s.cfg.Depth, s.cfg.Amount)
	if err != nil {
		return "", fmt.Errorf("purchasing stamp: %w", err)
	}
	zap.L().Info("stamp purchased", zap.String("stampID", stampID))

	poller := stamp.NewPoller(s.gw, s.cfg.PollRetries, s.cfg.PollInterval)
	if err := poller.WaitUsable(ctx, stampID); err != nil {
		return "", fmt.Errorf("waiting for stamp: %w", err)
	}

	final := envelope.Build(encoded, contentHash, stampID,
		opts.ProvenanceStandard, opts.Encryption)
	payload, err = envelope.Serialize(final)
	if err != nil {
		return "", fmt.Errorf("preparing envelope: %w", err)
	}

	zap.L().Info("uploading envelope", zap.String("stampID", stampID))
	reference, err := s.gw.Upload(ctx, payload, stampID, envelopeContentType)
	if err != nil {
		return "", fmt.Errorf("uploading envelope: %w", err)
	}

	zap.L().Info("upload complete", zap.String("reference", reference))
	return reference, nil
}
