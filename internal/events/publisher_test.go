package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"jobly/catalog-service/internal/events"
)

func TestEncode_Envelope(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	raw, err := events.Encode("catalog.company.deleted", map[string]string{"handle": "c1"}, at)
	if err != nil {
		t.Fatalf("Encode returned unexpected error: %v", err)
	}

	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
		At   time.Time         `json:"at"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if got.Type != "catalog.company.deleted" {
		t.Errorf("type = %q", got.Type)
	}
	if got.Data["handle"] != "c1" {
		t.Errorf("data = %v", got.Data)
	}
	if !got.At.Equal(at) || got.At.Location() != time.UTC {
		t.Errorf("at = %v, want %v in UTC", got.At, at)
	}
}

func TestEncode_UnencodablePayload(t *testing.T) {
	if _, err := events.Encode("x", make(chan int), time.Now()); err == nil {
		t.Error("Encode(chan) expected error, got nil")
	}
}
