package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"surfalert-service/internal/analysis"
	"surfalert-service/internal/catalog"
	"surfalert-service/internal/logging"
	"surfalert-service/internal/matcher"
	"surfalert-service/internal/models"
	"surfalert-service/internal/normalize"
	"surfalert-service/internal/scoring"
)

const (
	detailForecastHours   = 48
	analysisForecastHours = 24
	tideChartPoints       = 24
	defaultNotifications  = 50
	spotsConcurrency      = 4
)

// PreferenceStore is the persistence used by the alert endpoints.
type PreferenceStore interface {
	CreatePreference(ctx context.Context, p models.AlertPreference) error
	GetPreferencesByEmail(ctx context.Context, email string) ([]models.AlertPreference, error)
	DeactivatePreference(ctx context.Context, id uuid.UUID) error
	DeletePreference(ctx context.Context, id uuid.UUID) error
	GetNotificationsByEmail(ctx context.Context, email string, limit int) ([]models.Notification, error)
}

// ConditionsSource serves marine data for a spot.
type ConditionsSource interface {
	FetchConditions(ctx context.Context, spot models.SpotProfile) (models.Conditions, error)
	FetchForecast(ctx context.Context, spot models.SpotProfile, hours int) ([]models.Conditions, error)
	FetchTides(ctx context.Context, spot models.SpotProfile) ([]models.TidePoint, error)
}

// Dispatcher queues processing cycles and holds live subscriber sockets.
type Dispatcher interface {
	QueueTask(task models.Task) bool
	AddWebSocketConnection(email string, conn *websocket.Conn) bool
	RemoveWebSocketConnection(email string, conn *websocket.Conn)
}

type Handler struct {
	store      PreferenceStore
	conditions ConditionsSource
	catalog    *catalog.Catalog
	enricher   analysis.Enricher
	dispatcher Dispatcher
	logger     *logging.Logger
	upgrader   websocket.Upgrader
	now        func() time.Time
}

func NewHandler(store PreferenceStore, conditions ConditionsSource, cat *catalog.Catalog, enricher analysis.Enricher, dispatcher Dispatcher, logger *logging.Logger) *Handler {
	return &Handler{
		store:      store,
		conditions: conditions,
		catalog:    cat,
		enricher:   enricher,
		dispatcher: dispatcher,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		now: time.Now,
	}
}

func (h *Handler) CreateAlert(c *gin.Context) {
	var in models.AlertPreferenceCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Errorf("Invalid request body for alert: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	pref, err := buildPreference(in, h.catalog, h.now())
	if err != nil {
		h.logger.Warnf("Rejected alert for %s: %v", in.Email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.CreatePreference(c.Request.Context(), pref); err != nil {
		h.logger.Errorf("Failed to create alert: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert"})
		return
	}

	h.logger.Infof("Created alert: %s (%s, %s)", pref.ID, pref.Email, pref.SpotSlug)
	c.JSON(http.StatusCreated, pref)
}

func (h *Handler) GetAlertsByEmail(c *gin.Context) {
	email := c.Query("email")
	if !ValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	prefs, err := h.store.GetPreferencesByEmail(c.Request.Context(), email)
	if err != nil {
		h.logger.Errorf("Failed to get alerts for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get alerts"})
		return
	}
	if prefs == nil {
		prefs = []models.AlertPreference{}
	}

	h.logger.Infof("Retrieved %d alerts for %s", len(prefs), email)
	c.JSON(http.StatusOK, gin.H{"alerts": prefs})
}

func (h *Handler) DeactivateAlert(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeactivatePreference(c.Request.Context(), id); err != nil {
		h.storeError(c, "deactivate", id, err)
		return
	}
	h.logger.Infof("Deactivated alert: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Alert deactivated"})
}

func (h *Handler) DeleteAlert(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeletePreference(c.Request.Context(), id); err != nil {
		h.storeError(c, "delete", id, err)
		return
	}
	h.logger.Infof("Deleted alert: %s", id)
	c.Status(http.StatusNoContent)
}

// PreviewAlert evaluates a preference against current conditions without storing or notifying.
func (h *Handler) PreviewAlert(c *gin.Context) {
	var in models.AlertPreferenceCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	pref, err := buildPreference(in, h.catalog, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spot, _ := h.catalog.Get(pref.SpotSlug)
	cond, err := h.conditions.FetchConditions(c.Request.Context(), spot)
	if err != nil {
		h.logger.Errorf("Failed to fetch conditions for %s: %v", spot.Slug, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Conditions unavailable"})
		return
	}

	matched, failed, score := matcher.Explain(cond, pref)
	c.JSON(http.StatusOK, gin.H{
		"matches":     matched,
		"failedCheck": failed,
		"score":       score,
		"conditions":  cond,
	})
}

type spotSummary struct {
	models.SpotProfile
	Current   *models.Conditions  `json:"current"`
	Condition *models.ScoreResult `json:"condition"`
}

func (h *Handler) GetSpots(c *gin.Context) {
	ctx := c.Request.Context()
	spots := h.catalog.All()
	out := make([]spotSummary, len(spots))

	var g errgroup.Group
	g.SetLimit(spotsConcurrency)
	for i, spot := range spots {
		g.Go(func() error {
			cond, err := h.conditions.FetchConditions(ctx, spot)
			if err != nil {
				h.logger.WithField("spot", spot.Slug).Warnf("Using default conditions: %v", err)
				cond = normalize.DefaultConditions(h.now())
			}
			score := scoring.CoarseScore(cond)
			out[i] = spotSummary{SpotProfile: spot, Current: &cond, Condition: &score}
			return nil
		})
	}
	_ = g.Wait()

	c.JSON(http.StatusOK, out)
}

type spotForecast struct {
	Waves []models.Conditions `json:"waves"`
	Tides []models.TidePoint  `json:"tides"`
}

type spotDetail struct {
	models.SpotProfile
	Current   models.Conditions   `json:"current"`
	Condition models.ScoreResult  `json:"condition"`
	Forecast  spotForecast        `json:"forecast"`
	Analysis  models.SurfAnalysis `json:"analysis"`
}

func (h *Handler) GetSpot(c *gin.Context) {
	slug := c.Param("slug")
	spot, ok := h.catalog.Get(slug)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	}
	ctx := c.Request.Context()

	waves, err := h.conditions.FetchForecast(ctx, spot, detailForecastHours)
	if err == nil && len(waves) == 0 {
		err = models.ErrUpstreamUnavailable
	}
	if err != nil {
		h.logger.Errorf("Failed to fetch spot data for %s: %v", slug, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch spot data"})
		return
	}
	tides, err := h.conditions.FetchTides(ctx, spot)
	if err != nil {
		h.logger.Warnf("Tides unavailable for %s: %v", slug, err)
		tides = []models.TidePoint{}
	}
	if len(tides) > detailForecastHours {
		tides = tides[:detailForecastHours]
	}

	current := waves[0]
	next := waves
	if len(next) > analysisForecastHours {
		next = next[:analysisForecastHours]
	}

	c.JSON(http.StatusOK, spotDetail{
		SpotProfile: spot,
		Current:     current,
		Condition:   scoring.Score(current),
		Forecast:    spotForecast{Waves: waves, Tides: tides},
		Analysis:    h.enricher.Enrich(ctx, current, spot, next),
	})
}

// GetChart returns the wave or tide series of a spot for plotting.
func (h *Handler) GetChart(c *gin.Context) {
	chartType := c.Query("type")
	if chartType != "wave" && chartType != "tide" {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Invalid chart type. Use "wave" or "tide"`})
		return
	}
	spot, ok := h.catalog.Get(c.Query("spot"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Spot not found"})
		return
	}
	ctx := c.Request.Context()

	var data interface{}
	if chartType == "wave" {
		waves, err := h.conditions.FetchForecast(ctx, spot, detailForecastHours)
		if err != nil {
			h.logger.Errorf("Failed to build wave chart for %s: %v", spot.Slug, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate chart data"})
			return
		}
		data = waves
	} else {
		tides, err := h.conditions.FetchTides(ctx, spot)
		if err != nil {
			h.logger.Errorf("Failed to build tide chart for %s: %v", spot.Slug, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate chart data"})
			return
		}
		if len(tides) > tideChartPoints {
			tides = tides[:tideChartPoints]
		}
		data = tides
	}

	c.JSON(http.StatusOK, gin.H{"type": chartType, "spot": spot.Slug, "data": data})
}

func (h *Handler) GetWindDirections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"directions": normalize.CompassPoints[:]})
}

type processRequest struct {
	SpotSlug string `json:"spotSlug"`
}

// TriggerProcess queues a processing cycle, optionally for a single spot.
func (h *Handler) TriggerProcess(c *gin.Context) {
	var req processRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	if req.SpotSlug == "" {
		req.SpotSlug = c.Query("spot")
	}
	if req.SpotSlug != "" {
		if _, ok := h.catalog.Get(req.SpotSlug); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown spot"})
			return
		}
	}

	task := models.Task{
		RequestID: uuid.NewString(),
		SpotSlug:  req.SpotSlug,
		Reason:    models.ReasonManual,
		Timestamp: h.now().UTC(),
	}
	if !h.dispatcher.QueueTask(task) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Processing queue is full"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"requestId": task.RequestID})
}

func (h *Handler) GetNotificationsByEmail(c *gin.Context) {
	email := c.Query("email")
	if !ValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}
	limit := defaultNotifications
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	notifications, err := h.store.GetNotificationsByEmail(c.Request.Context(), email, limit)
	if err != nil {
		h.logger.Errorf("Failed to get notifications for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get notifications"})
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	h.logger.Infof("Retrieved %d notifications for %s", len(notifications), email)
	c.JSON(http.StatusOK, notifications)
}

// HandleWebSocket streams delivered alert events for the subscriber in ?email=.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	email := c.Query("email")
	if !ValidEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed for %s: %v", email, err)
		return
	}
	if !h.dispatcher.AddWebSocketConnection(email, conn) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many connections"))
		_ = conn.Close()
		return
	}
	defer func() {
		h.dispatcher.RemoveWebSocketConnection(email, conn)
		_ = conn.Close()
	}()

	// Drain client frames until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "spots": h.catalog.Len()})
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.logger.Errorf("Invalid alert id %s: %v", c.Param("id"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) storeError(c *gin.Context, op string, id uuid.UUID, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
		return
	}
	h.logger.Errorf("Failed to %s alert %s: %v", op, id, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op + " alert"})
}
