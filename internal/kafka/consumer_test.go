package kafka

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"surfalert-service/internal/models"
)

func TestDecodeTrigger(t *testing.T) {
	now := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	id := uuid.NewString()

	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantSpot string
		wantID   string
		wantTime time.Time
	}{
		{name: "empty body", body: "", wantTime: now},
		{name: "all spots", body: `{}`, wantTime: now},
		{
			name:     "one spot with id",
			body:     `{"request_id":"` + id + `","spot_slug":" taiba ","timestamp":"2025-03-01T03:00:00-03:00"}`,
			wantSpot: "taiba",
			wantID:   id,
			wantTime: now,
		},
		{name: "bad id", body: `{"request_id":"abc"}`, wantErr: true},
		{name: "not json", body: `run now`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := decodeTrigger([]byte(tt.body), now)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeTrigger() error = %v", err)
			}
			if task.Reason != models.ReasonKafka || task.SpotSlug != tt.wantSpot {
				t.Errorf("task = %+v", task)
			}
			if tt.wantID != "" && task.RequestID != tt.wantID {
				t.Errorf("RequestID = %s, want %s", task.RequestID, tt.wantID)
			}
			if _, err := uuid.Parse(task.RequestID); err != nil {
				t.Errorf("RequestID %q is not a uuid", task.RequestID)
			}
			if !task.Timestamp.Equal(tt.wantTime) {
				t.Errorf("Timestamp = %v, want %v", task.Timestamp, tt.wantTime)
			}
		})
	}
}
