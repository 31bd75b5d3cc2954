package queue

import (
	"encoding/json"
	"testing"
)

type refreshArgs struct {
	Method string `json:"method"`
}

func TestParsePayloadRawJSON(t *testing.T) {
	raw := json.RawMessage(`{"method":"cubic-spline"}`)
	got, err := ParsePayload[refreshArgs](raw)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if got.Method != "cubic-spline" {
		t.Fatalf("method = %q", got.Method)
	}
}

func TestParsePayloadPassThrough(t *testing.T) {
	in := refreshArgs{Method: "linear"}
	got, err := ParsePayload[refreshArgs](in)
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if got != in {
		t.Fatalf("value roundtrip: %+v", got)
	}

	got, err = ParsePayload[refreshArgs](&in)
	if err != nil {
		t.Fatalf("pointer: %v", err)
	}
	if got != in {
		t.Fatalf("pointer roundtrip: %+v", got)
	}
}

func TestParsePayloadMap(t *testing.T) {
	got, err := ParsePayload[refreshArgs](map[string]interface{}{"method": "nelson-siegel"})
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if got.Method != "nelson-siegel" {
		t.Fatalf("method = %q", got.Method)
	}
}

func TestParsePayloadBadJSON(t *testing.T) {
	if _, err := ParsePayload[refreshArgs](json.RawMessage(`{`)); err == nil {
		t.Fatal("expected decode error")
	}
}
