package utils

import (
	"testing"
	"time"
)

func TestRunCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 7, 12, 35, 0, 0, time.UTC)

	encoded, err := EncodeRunCursor(at, "run-1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeRunCursor(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !decoded.UpdatedAt.Equal(at) || decoded.ID != "run-1" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestDecodeRunCursorRejectsGarbage(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"empty", ""},
		{"not base64", "!!!"},
		{"not json", "bm90LWpzb24"},
		{"missing fields", "e30"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeRunCursor(tc.cursor); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
