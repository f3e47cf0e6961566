package envelope

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const (
	testHash  = "916f0027a575074ce72a331777c3478d6513f786a591bd892da1a577bf2335f9"
	testStamp = "a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3a3"
)

// TestSerializeParse_RoundTrip verifies Parse(Serialize(e)) equals e field
// for field, with and without the optional tags.
func TestSerializeParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
	}{
		{
			name: "required fields only",
			env:  Build("dGVzdCBkYXRh", testHash, testStamp, "", ""),
		},
		{
			name: "all fields",
			env:  Build("dGVzdCBkYXRh", testHash, testStamp, "PROV-O", "aes-256-gcm"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Serialize(tc.env)
			if err != nil {
				t.Fatalf("Serialize returned error: %v", err)
			}
			got, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if got != tc.env {
				t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, tc.env)
			}
		})
	}
}

// TestSerialize_StableAndOmitsEmptyTags verifies the key order is stable
// across calls and that empty optional tags are omitted entirely.
func TestSerialize_StableAndOmitsEmptyTags(t *testing.T) {
	env := Build("dGVzdCBkYXRh", testHash, testStamp, "", "")

	first, err := Serialize(env)
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}
	second, err := Serialize(env)
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("serialization is not byte-stable across calls")
	}
	if strings.Contains(string(first), "provenance_standard") {
		t.Fatalf("empty provenance_standard not omitted: %s", first)
	}
	if strings.Contains(string(first), "encryption") {
		t.Fatalf("empty encryption not omitted: %s", first)
	}
}

// TestSerialize_PlaceholderSizeMatchesFinal verifies an envelope built with
// the placeholder stamp id serializes to exactly as many bytes as the same
// envelope with a real batch id, so the pre-purchase size estimate is exact.
func TestSerialize_PlaceholderSizeMatchesFinal(t *testing.T) {
	placeholder := Build("dGVzdCBkYXRh", testHash, PlaceholderStampID, "PROV-O", "")
	final := Build("dGVzdCBkYXRh", testHash, testStamp, "PROV-O", "")

	a, err := Serialize(placeholder)
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}
	b, err := Serialize(final)
	if err != nil {
		t.Fatalf("Serialize returned error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("size estimate would be wrong: placeholder %d bytes, final %d bytes", len(a), len(b))
	}
}

// TestParse_InvalidJSON verifies malformed bytes are classified as
// ErrInvalidJSON, distinct from schema failures, so callers can decide to
// preserve the raw bytes.
func TestParse_InvalidJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "truncated", input: `{"data": "abc"`},
		{name: "not json at all", input: "hello world"},
		{name: "empty", input: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			if !errors.Is(err, ErrInvalidJSON) {
				t.Fatalf("expected ErrInvalidJSON, got %v", err)
			}
		})
	}
}

// TestParse_SchemaErrors verifies well-formed JSON with missing or
// wrongly-typed required fields is classified as ErrSchema.
func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "missing data", input: `{"content_hash":"` + testHash + `","stamp_id":"` + testStamp + `"}`},
		{name: "missing content_hash", input: `{"data":"abc","stamp_id":"` + testStamp + `"}`},
		{name: "missing stamp_id", input: `{"data":"abc","content_hash":"` + testHash + `"}`},
		{name: "wrong type", input: `{"data":42,"content_hash":"` + testHash + `","stamp_id":"` + testStamp + `"}`},
		{name: "not an object", input: `[1,2,3]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.input))
			if !errors.Is(err, ErrSchema) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
			if errors.Is(err, ErrInvalidJSON) {
				t.Fatalf("schema failure misclassified as invalid JSON: %v", err)
			}
		})
	}
}

// TestParse_IgnoresUnknownFields verifies extra fields do not fail parsing.
func TestParse_IgnoresUnknownFields(t *testing.T) {
	input := `{"data":"abc","content_hash":"` + testHash + `","stamp_id":"` + testStamp + `","future_field":true}`
	env, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if env.Data != "abc" || env.ContentHash != testHash || env.StampID != testStamp {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

// TestPretty_IsIndentedJSON verifies the persisted meta artifact is valid,
// indented JSON that parses back to the same envelope.
func TestPretty_IsIndentedJSON(t *testing.T) {
	env := Build("dGVzdCBkYXRh", testHash, testStamp, "PROV-O", "")
	pretty, err := Pretty(env)
	if err != nil {
		t.Fatalf("Pretty returned error: %v", err)
	}
	if !json.Valid(pretty) {
		t.Fatal("Pretty output is not valid JSON")
	}
	if !strings.Contains(string(pretty), "\n  ") {
		t.Fatal("Pretty output is not indented")
	}
	got, err := Parse(pretty)
	if err != nil {
		t.Fatalf("Parse(Pretty) returned error: %v", err)
	}
	if got != env {
		t.Fatalf("Pretty round trip mismatch: got %+v want %+v", got, env)
	}
}
