// Package envelope defines the provenance envelope: the JSON document that
// wraps a file's base64-encoded bytes together with the SHA-256 of the
// original content, the postage stamp id that paid for the upload, and
// optional provenance/encryption tags. The envelope is the only unit this
// tool ever uploads to or downloads from Swarm.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PlaceholderStampID is the all-zero batch id used when an envelope is built
// solely to measure its serialized size before a stamp has been purchased.
// It is the same length as a real batch id, so the placeholder and final
// envelopes serialize to the same number of bytes.
const PlaceholderStampID = "0000000000000000000000000000000000000000000000000000000000000000"

// ErrInvalidJSON indicates that envelope bytes are not well-formed JSON.
// Callers treat this differently from ErrSchema: the raw bytes are preserved
// to disk for forensic inspection before the operation aborts.
var ErrInvalidJSON = errors.New("envelope is not valid JSON")

// ErrSchema indicates well-formed JSON that is missing a required envelope
// field or carries one with the wrong type.
var ErrSchema = errors.New("envelope schema validation failed")

// Envelope is the persisted/transmitted provenance unit. It is immutable once
// built; the upload flow reconstructs it rather than mutating the stamp id in
// place. Field declaration order fixes the JSON key order, which keeps
// serialization byte-stable for the size-estimation pass.
type Envelope struct {
	// Data is the standard base64 encoding of the original file bytes.
	Data string `json:"data"`
	// ContentHash is the lowercase hex SHA-256 of the original raw bytes
	// (not of the base64 string).
	ContentHash string `json:"content_hash"`
	// StampID is the postage batch id that paid for this upload, lowercase
	// hex. The placeholder envelope carries PlaceholderStampID here.
	StampID string `json:"stamp_id"`
	// ProvenanceStandard optionally names the provenance standard the
	// original data follows (e.g. "PROV-O").
	ProvenanceStandard string `json:"provenance_standard,omitempty"`
	// Encryption optionally describes the encryption applied to the
	// original data before wrapping.
	Encryption string `json:"encryption,omitempty"`
}

// Build constructs an envelope from already-encoded data and its content
// hash. Construction trusts the caller: the data/hash correspondence is only
// enforced at verification time, after download.
func Build(encodedData, contentHash, stampID, provenanceStandard, encryption string) Envelope {
	return Envelope{
		Data:               encodedData,
		ContentHash:        contentHash,
		StampID:            stampID,
		ProvenanceStandard: provenanceStandard,
		Encryption:         encryption,
	}
}

// Serialize encodes the envelope as compact UTF-8 JSON bytes. The key order
// is stable across calls, so serializing the placeholder envelope yields the
// exact byte size of the final upload payload.
func Serialize(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("serialize envelope: %w", err)
	}
	return data, nil
}

// Pretty encodes the envelope as indented JSON for the persisted
// {reference}.meta.json artifact.
func Pretty(e Envelope) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize envelope: %w", err)
	}
	return append(data, '\n'), nil
}

// Parse decodes envelope bytes. Malformed JSON is reported as ErrInvalidJSON;
// well-formed JSON missing a required field (data, content_hash, stamp_id) or
// carrying one with a non-string type is reported as ErrSchema. Unknown extra
// fields are ignored. Round trip: Parse(Serialize(e)) equals e field for field.
func Parse(data []byte) (Envelope, error) {
	if !json.Valid(data) {
		return Envelope{}, fmt.Errorf("%w: %d bytes", ErrInvalidJSON, len(data))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, fmt.Errorf("%w: top-level value is not an object", ErrSchema)
	}

	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var missing []string
	for _, field := range []string{"data", "content_hash", "stamp_id"} {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return Envelope{}, fmt.Errorf("%w: missing required field(s) %s", ErrSchema, strings.Join(missing, ", "))
	}
	return e, nil
}
