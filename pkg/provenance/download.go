package provenance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/swarmprov/swarmprov-go/pkg/codec"
	"github.com/swarmprov/swarmprov-go/pkg/envelope"
	"go.uber.org/zap"
)

// Artifact name suffixes written next to each other in the output directory.
// The UNVERIFIED name is deliberately loud: decoded bytes that failed hash
// verification must never appear under the trusted .data name.
const (
	metaSuffix        = ".meta.json"
	dataSuffix        = ".data"
	unverifiedSuffix  = ".UNVERIFIED.data"
	invalidMetaSuffix = ".invalid_metadata.txt"
)

// DownloadResult describes what a download produced on disk.
type DownloadResult struct {
	// Reference is the Swarm reference hash the envelope was fetched by.
	Reference string
	// MetaPath is the pretty-printed envelope artifact. Written for every
	// parseable envelope, verified or not.
	MetaPath string
	// DataPath is where the decoded bytes were written: the trusted .data
	// name when verification passed, the UNVERIFIED name when it failed.
	DataPath string
	// Verified reports whether the recomputed hash matched the envelope.
	Verified bool
	// StoredHash and ComputedHash are the envelope's content_hash and the
	// recomputed SHA-256 of the decoded bytes.
	StoredHash   string
	ComputedHash string
}

// Download fetches an envelope by reference, verifies its content hash, and
// persists the artifacts into outDir.
//
// Evidence preservation is mandatory: bytes that fail envelope parsing are
// written to {reference}.invalid_metadata.txt before the error is returned,
// and decoded bytes that fail hash verification are written under the
// UNVERIFIED name. A hash mismatch returns ErrIntegrityMismatch together
// with the partially filled result.
func (s *Service) Download(ctx context.Context, reference, outDir string) (*DownloadResult, error) {
	raw, err := s.gw.Download(ctx, reference)
	if err != nil {
		return nil, err
	}
	zap.L().Info("envelope downloaded", zap.String("reference", reference), zap.Int("size", len(raw)))

	result := &DownloadResult{Reference: reference}

	env, err := envelope.Parse(raw)
	if err != nil {
		if errors.Is(err, envelope.ErrInvalidJSON) || errors.Is(err, envelope.ErrSchema) {
			evidence := filepath.Join(outDir, reference+invalidMetaSuffix)
			if werr := writeArtifact(evidence, raw); werr != nil {
				zap.L().Error("failed to preserve invalid metadata", zap.Error(werr))
			} else {
				zap.L().Warn("invalid metadata preserved", zap.String("path", evidence))
			}
		}
		return nil, fmt.Errorf("parsing envelope %s: %w", reference, err)
	}

	decoded, err := codec.Decode(env.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding envelope data for %s: %w", reference, err)
	}

	result.StoredHash = env.ContentHash
	result.ComputedHash = codec.Hash(decoded)

	// The parsed envelope is persisted regardless of the verification
	// outcome; it is the record of what the network returned.
	pretty, err := envelope.Pretty(env)
	if err != nil {
		return nil, fmt.Errorf("formatting envelope %s: %w", reference, err)
	}
	result.MetaPath = filepath.Join(outDir, reference+metaSuffix)
	if err := writeArtifact(result.MetaPath, pretty); err != nil {
		return nil, err
	}

	if result.ComputedHash != result.StoredHash {
		result.DataPath = filepath.Join(outDir, reference+unverifiedSuffix)
		if err := writeArtifact(result.DataPath, decoded); err != nil {
			return nil, err
		}
		zap.L().Error("hash verification failed",
			zap.String("reference", reference),
			zap.String("stored", result.StoredHash),
			zap.String("computed", result.ComputedHash),
			zap.String("path", result.DataPath))
		return result, fmt.Errorf("%w: reference %s: stored %s, computed %s",
			ErrIntegrityMismatch, reference, result.StoredHash, result.ComputedHash)
	}

	result.Verified = true
	result.DataPath = filepath.Join(outDir, reference+dataSuffix)
	if err := writeArtifact(result.DataPath, decoded); err != nil {
		return nil, err
	}
	zap.L().Info("content verified",
		zap.String("reference", reference),
		zap.String("sha256", result.ComputedHash),
		zap.String("path", result.DataPath))
	return result, nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	return nil
}
