package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampLenientDecoding(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{`"2026-09-01T10:00:00Z"`, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)},
		{`"2026-09-01 10:00:00"`, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)},
		{`"2026-09-01"`, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{`""`, time.Time{}},
		{`null`, time.Time{}},
		{`"not a date"`, time.Time{}},
	}
	for _, tc := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tc.raw), &ts); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tc.raw, err)
		}
		if !ts.Equal(tc.want) {
			t.Fatalf("Unmarshal(%s) = %v, want %v", tc.raw, ts.Time, tc.want)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	want := At(time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC))
	b, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Timestamp
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(want.Time) {
		t.Fatalf("roundtrip: %v != %v", got.Time, want.Time)
	}
}

func TestStatusNeedsResponse(t *testing.T) {
	if !StatusAssigned.NeedsResponse() || !StatusUrgent.NeedsResponse() {
		t.Fatalf("ASSIGNED and URGENT await a response")
	}
	for _, s := range []TaskStatus{StatusConfirmed, StatusRejected, StatusTentative, StatusCompleted} {
		if s.NeedsResponse() {
			t.Fatalf("%s must not need a response", s)
		}
	}
}

func TestStatusKnown(t *testing.T) {
	if TaskStatus("PENDING").Known() {
		t.Fatalf("PENDING is not part of the status enum")
	}
	if !StatusTentative.Known() {
		t.Fatalf("TENTATIVE is part of the status enum")
	}
}
