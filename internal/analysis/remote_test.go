package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"surfalert-service/internal/config"
	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
)

var calm = models.Conditions{WaveHeight: 1.5, WindSpeed: 8, WindDirection: "NE", WavePeriod: 11, TideHeight: 1.0, WaterTemp: 27}

func newTestEnricher(url, key string) *RemoteModelEnricher {
	return NewRemoteModelEnricher(config.Analysis{
		APIKey:  key,
		BaseURL: url,
		Model:   "gpt-4o-mini",
		Timeout: 2 * time.Second,
	}, logging.NewWithWriter(io.Discard, "error"))
}

func chatReply(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestRemoteEnrichUsesModelReply(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatReply("Sure! ```json\n"+
			`{"recommendation":"Go now","score":140,"tips":["a","b","c","d"],"warnings":["x"],"skillLevel":"ADVANCED","equipment":["board"]}`+
			"\n```"))
	}))
	defer srv.Close()

	a := newTestEnricher(srv.URL, "secret").Enrich(context.Background(), calm, taiba, nil)

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotModel != "gpt-4o-mini" {
		t.Errorf("model = %q", gotModel)
	}
	if a.Source != models.SourceRemote {
		t.Fatalf("Source = %s, want remote", a.Source)
	}
	if a.Score != 100 {
		t.Errorf("Score = %d, want clamped 100", a.Score)
	}
	if len(a.Tips) != MaxTips {
		t.Errorf("Tips = %v, want truncated to %d", a.Tips, MaxTips)
	}
	if a.SkillLevel != models.SkillAdvanced {
		t.Errorf("SkillLevel = %s", a.SkillLevel)
	}
	if a.BestTime != DefaultBestTime {
		t.Errorf("BestTime = %q, want default", a.BestTime)
	}
}

func TestRemoteEnrichFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		key     string
	}{
		{
			name: "missing key",
			key:  "",
			handler: func(w http.ResponseWriter, r *http.Request) {
				t.Error("no request expected without a key")
			},
		},
		{
			name: "server error",
			key:  "k",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "no json in reply",
			key:  "k",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, chatReply("I cannot help with that."))
			},
		},
		{
			name: "missing score",
			key:  "k",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, chatReply(`{"recommendation":"Go"}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			a := newTestEnricher(srv.URL, tt.key).Enrich(context.Background(), calm, taiba, nil)
			want := Analyze(calm, taiba, nil)
			if a.Source != models.SourceHeuristic || a.Score != want.Score {
				t.Errorf("got %+v, want heuristic result %+v", a, want)
			}
		})
	}
}

func TestParseModelReply(t *testing.T) {
	a, err := ParseModelReply(`{"recommendation":"Fine","score":55.7,"bestTime":"7h-9h","skillLevel":"expert"}`)
	if err != nil {
		t.Fatalf("ParseModelReply() error = %v", err)
	}
	if a.Score != 55 || a.BestTime != "7h-9h" {
		t.Errorf("got %+v", a)
	}
	if a.SkillLevel != models.SkillIntermediate {
		t.Errorf("unknown skill level should default to intermediate, got %s", a.SkillLevel)
	}
	if a.Tips == nil || a.Warnings == nil || a.Equipment == nil {
		t.Error("lists should be empty, not nil")
	}

	_, err = ParseModelReply("not even close")
	if !errors.Is(err, models.ErrAnalysisDegraded) {
		t.Errorf("error = %v, want ErrAnalysisDegraded", err)
	}
	for raw, want := range map[string]int{
		`{"recommendation":"Go","score":1e20}`:  100,
		`{"recommendation":"Go","score":-1e20}`: 0,
		`{"recommendation":"Go","score":100.9}`: 100,
	} {
		a, err := ParseModelReply(raw)
		if err != nil || a.Score != want {
			t.Errorf("ParseModelReply(%s) = %d, %v; want %d", raw, a.Score, err, want)
		}
	}

	if _, err := ParseModelReply(`{"score":10}`); err == nil || !strings.Contains(err.Error(), "invalid analysis structure") {
		t.Errorf("error = %v", err)
	}
}
