// Copyright 2026 The Lair Chat Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"testing"
	"time"
)

func TestMessageTime(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		wantOK    bool
		want      time.Time
	}{
		{
			name:      "RFC 3339 with Z",
			timestamp: "2026-03-14T15:09:26Z",
			wantOK:    true,
			want:      time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		},
		{
			name:      "RFC 3339 with offset",
			timestamp: "2026-03-14T15:09:26+02:00",
			wantOK:    true,
			want:      time.Date(2026, 3, 14, 15, 9, 26, 0, time.FixedZone("", 2*3600)),
		},
		{
			name:      "fractional seconds",
			timestamp: "2026-03-14T15:09:26.535897Z",
			wantOK:    true,
			want:      time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC),
		},
		{
			name:      "offset-less form",
			timestamp: "2026-03-14T15:09:26",
			wantOK:    true,
			want:      time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
		},
		{
			name:      "malformed degrades to raw display",
			timestamp: "yesterday-ish",
			wantOK:    false,
		},
		{
			name:      "empty",
			timestamp: "",
			wantOK:    false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			message := Message{Timestamp: test.timestamp}
			got, ok := message.Time()
			if ok != test.wantOK {
				t.Fatalf("Time() ok = %v, want %v", ok, test.wantOK)
			}
			if ok && !got.Equal(test.want) {
				t.Errorf("Time() = %v, want %v", got, test.want)
			}
		})
	}
}
