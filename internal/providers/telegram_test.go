package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"surfalert-service/internal/models"
)

func TestNewTelegramReporterDisabled(t *testing.T) {
	if r := NewTelegramReporter("", 42, 1, quietLogger()); r != nil {
		t.Error("expected nil reporter without token")
	}
	if r := NewTelegramReporter("token", 0, 1, quietLogger()); r != nil {
		t.Error("expected nil reporter without chat ID")
	}
}

func TestTelegramReporterReport(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"surf"}}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			_ = r.ParseMultipartForm(1 << 20)
			sent = r.FormValue("text")
			_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewTelegramReporter("123:abc", 42, 5, quietLogger())
	r.serverURL = srv.URL

	start := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	summary := models.CycleSummary{
		RequestID:  "req-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Results: []models.PreferenceResult{
			{SpotSlug: "taiba", Email: "a@b.co", Outcome: models.OutcomeNotified},
		},
	}
	if err := r.Report(context.Background(), summary); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.Contains(sent, "Notified: 1") || !strings.Contains(sent, "Duration: 1.5s") {
		t.Errorf("sent text = %q", sent)
	}
}
