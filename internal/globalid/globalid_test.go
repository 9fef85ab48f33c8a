package globalid

import (
	"errors"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	testCases := []struct {
		typeName string
		key      string
	}{
		{"AccountNode", "u_abcDEF1234"},
		{"ApplicationNode", "app_abcDEF1234"},
		{"UserNode", "u_abc123"},
		{"AccountNode", ""},
		{"", "u_x"},
		{"AccountNode", "key:with:colons"},
	}

	for _, tc := range testCases {
		id := Encode(tc.typeName, tc.key)
		gotType, gotKey, err := Decode(id)
		if err != nil {
			t.Fatalf("Decode(Encode(%q, %q)) failed: %v", tc.typeName, tc.key, err)
		}
		if gotType != tc.typeName || gotKey != tc.key {
			t.Errorf("round trip = (%q, %q), want (%q, %q)", gotType, gotKey, tc.typeName, tc.key)
		}
	}
}

func TestDecode_KnownValue(t *testing.T) {
	typeName, key, err := Decode("VXNlck5vZGU6dV9hYmMxMjM=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typeName != "UserNode" || key != "u_abc123" {
		t.Errorf("got (%q, %q), want (UserNode, u_abc123)", typeName, key)
	}

	if got := Encode("UserNode", "u_abc123"); got != "VXNlck5vZGU6dV9hYmMxMjM=" {
		t.Errorf("Encode = %s", got)
	}
}

func TestDecode_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		id   string
	}{
		{name: "not base64", id: "not-valid-base64!!!"},
		{name: "plain word", id: "invalid"},
		{name: "no delimiter", id: "VXNlck5vZGU="}, // "UserNode"
		{name: "invalid utf8", id: "/w=="},
		{name: "empty", id: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(tc.id)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}
