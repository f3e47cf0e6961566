package codec

import (
	"bytes"
	"errors"
	"testing"
)

// TestHash_KnownVector verifies the digest of a fixed input against the
// value produced by sha256sum.
func TestHash_KnownVector(t *testing.T) {
	got := Hash([]byte("test data"))
	want := "916f0027a575074ce72a331777c3478d6513f786a591bd892da1a577bf2335f9"
	if got != want {
		t.Fatalf("Hash mismatch:\n got %s\nwant %s", got, want)
	}
}

// TestHash_EmptyInput verifies hashing is total over the empty sequence.
func TestHash_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Hash(nil); got != want {
		t.Fatalf("Hash(nil) = %s, want %s", got, want)
	}
}

// TestHash_Deterministic verifies repeated calls agree.
func TestHash_Deterministic(t *testing.T) {
	data := []byte("some provenance data")
	if Hash(data) != Hash(data) {
		t.Fatal("Hash is not deterministic")
	}
}

// TestEncodeDecode_RoundTrip verifies decode(encode(b)) == b across byte
// sequences including empty and binary input.
func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "text", data: []byte("some provenance data")},
		{name: "binary", data: []byte{0x00, 0xff, 0x10, 0x80, 0x7f}},
		{name: "padding one", data: []byte("ab")},
		{name: "padding two", data: []byte("a")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(Encode(tc.data))
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if !bytes.Equal(got, tc.data) {
				t.Fatalf("round trip mismatch: got %v want %v", got, tc.data)
			}
		})
	}
}

// TestDecode_Malformed verifies invalid base64 is reported as
// ErrMalformedEncoding rather than a raw corrupt-input error.
func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "wrong alphabet", input: "not base64!!"},
		{name: "bad padding", input: "abcde==="},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.input)
			if err == nil {
				t.Fatal("expected error for malformed input")
			}
			if !errors.Is(err, ErrMalformedEncoding) {
				t.Fatalf("expected ErrMalformedEncoding, got %v", err)
			}
		})
	}
}
