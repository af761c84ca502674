package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"

	"surfalert-service/internal/config"
	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
)

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// RemoteModelEnricher asks an OpenAI-compatible chat completions endpoint for
// the analysis and delegates to the heuristic on any failure.
type RemoteModelEnricher struct {
	cfg        config.Analysis
	httpClient *http.Client
	fallback   Enricher
	logger     *logging.Logger
}

// NewRemoteModelEnricher creates a remote enricher falling back to the heuristic.
func NewRemoteModelEnricher(cfg config.Analysis, logger *logging.Logger) *RemoteModelEnricher {
	return &RemoteModelEnricher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		fallback:   HeuristicEnricher{},
		logger:     logger,
	}
}

// Enrich implements Enricher.
func (e *RemoteModelEnricher) Enrich(ctx context.Context, c models.Conditions, spot models.SpotProfile, forecast []models.Conditions) models.SurfAnalysis {
	a, err := e.request(ctx, c, spot)
	if err != nil {
		e.logger.WithField("spot", spot.Slug).Warnf("Remote analysis unavailable, using heuristic: %v", err)
		return e.fallback.Enrich(ctx, c, spot, forecast)
	}
	return a
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (e *RemoteModelEnricher) request(ctx context.Context, c models.Conditions, spot models.SpotProfile) (models.SurfAnalysis, error) {
	if e.cfg.APIKey == "" {
		return models.SurfAnalysis{}, fmt.Errorf("%w: missing API key", models.ErrAnalysisDegraded)
	}

	body, err := json.Marshal(chatRequest{
		Model:       e.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: buildPrompt(c, spot)}},
		Temperature: 0.3,
	})
	if err != nil {
		return models.SurfAnalysis{}, fmt.Errorf("%w: encode request: %v", models.ErrAnalysisDegraded, err)
	}

	url := strings.TrimRight(e.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.SurfAnalysis{}, fmt.Errorf("%w: create request: %v", models.ErrAnalysisDegraded, err)
	}
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return models.SurfAnalysis{}, fmt.Errorf("%w: %v", models.ErrAnalysisDegraded, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.SurfAnalysis{}, fmt.Errorf("%w: API returned status %d", models.ErrAnalysisDegraded, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return models.SurfAnalysis{}, fmt.Errorf("%w: decode response: %v", models.ErrAnalysisDegraded, err)
	}
	if len(chat.Choices) == 0 {
		return models.SurfAnalysis{}, fmt.Errorf("%w: empty response", models.ErrAnalysisDegraded)
	}
	return ParseModelReply(chat.Choices[0].Message.Content)
}

// ParseModelReply extracts and validates the JSON analysis embedded in a model reply.
func ParseModelReply(text string) (models.SurfAnalysis, error) {
	raw := jsonObject.FindString(text)
	if raw == "" {
		return models.SurfAnalysis{}, fmt.Errorf("%w: no JSON object in reply", models.ErrAnalysisDegraded)
	}

	var reply struct {
		Recommendation string   `json:"recommendation"`
		Score          *float64 `json:"score"`
		BestTime       string   `json:"bestTime"`
		Tips           []string `json:"tips"`
		Warnings       []string `json:"warnings"`
		SkillLevel     string   `json:"skillLevel"`
		Equipment      []string `json:"equipment"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return models.SurfAnalysis{}, fmt.Errorf("%w: invalid JSON: %v", models.ErrAnalysisDegraded, err)
	}
	if reply.Recommendation == "" || reply.Score == nil {
		return models.SurfAnalysis{}, errors.Join(models.ErrAnalysisDegraded, errors.New("invalid analysis structure"))
	}

	score := int(math.Max(0, math.Min(100, *reply.Score)))
	skill := models.SkillLevel(strings.ToLower(reply.SkillLevel))
	if !skill.Valid() {
		skill = models.SkillIntermediate
	}
	bestTime := reply.BestTime
	if bestTime == "" {
		bestTime = DefaultBestTime
	}

	return models.SurfAnalysis{
		Recommendation: reply.Recommendation,
		Score:          clampScore(score),
		BestTime:       bestTime,
		Tips:           truncate(reply.Tips, MaxTips),
		Warnings:       truncate(reply.Warnings, MaxWarnings),
		SkillLevel:     skill,
		Equipment:      truncate(reply.Equipment, MaxEquipment),
		Source:         models.SourceRemote,
	}, nil
}

func buildPrompt(c models.Conditions, spot models.SpotProfile) string {
	var b strings.Builder
	b.WriteString("You are an experienced surf instructor in Ceará, Brazil. Analyse the current conditions.\n\n")
	b.WriteString("CURRENT CONDITIONS:\n")
	fmt.Fprintf(&b, "- Spot: %s\n", spot.Name)
	fmt.Fprintf(&b, "- Wave height: %.1fm\n", c.WaveHeight)
	fmt.Fprintf(&b, "- Wave period: %.0fs\n", c.WavePeriod)
	fmt.Fprintf(&b, "- Wave direction: %.0f°\n", c.WaveDirection)
	fmt.Fprintf(&b, "- Wind speed: %.0fkt\n", c.WindSpeed)
	fmt.Fprintf(&b, "- Wind direction: %s\n", c.WindDirection)
	fmt.Fprintf(&b, "- Tide height: %.1fm\n", c.TideHeight)
	fmt.Fprintf(&b, "- Water temperature: %.0f°C\n", c.WaterTemp)
	fmt.Fprintf(&b, "- Air temperature: %.0f°C\n\n", c.AirTemp)
	b.WriteString("SPOT CHARACTERISTICS:\n")
	fmt.Fprintf(&b, "- Type: %s\n", spot.Type)
	fmt.Fprintf(&b, "- Ideal wind direction: %s\n", spot.IdealWindDirection)
	fmt.Fprintf(&b, "- Ideal wave direction: %s\n\n", spot.IdealWaveDirection)
	b.WriteString(`Reply with JSON only:
{
  "recommendation": "main recommendation (max 100 characters)",
  "score": number 0-100,
  "bestTime": "best time to surf today",
  "tips": ["tip1", "tip2", "tip3"],
  "warnings": ["warning1", "warning2"],
  "skillLevel": "beginner|intermediate|advanced",
  "equipment": ["item1", "item2"]
}`)
	return b.String()
}
