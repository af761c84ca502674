package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"surfalert-service/internal/config"
	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
)

// PreferenceLister loads the preferences to evaluate in a cycle.
type PreferenceLister interface {
	ListActivePreferences(ctx context.Context) ([]models.AlertPreference, error)
}

// Reporter receives the summary of every cycle.
type Reporter interface {
	Report(ctx context.Context, summary models.CycleSummary) error
}

// Service runs processing cycles from a task queue drained by a worker pool.
type Service struct {
	store     PreferenceLister
	processor *Processor
	reporter  Reporter
	logger    *logging.Logger
	config    config.Config
	tasks     chan models.Task
	ctx       context.Context
	cancel    context.CancelFunc
	wg        *sync.WaitGroup
	wsManager *WebSocketManager

	mu          sync.Mutex
	lastSummary *models.CycleSummary
}

// New constructs a Service. reporter may be nil.
func New(store PreferenceLister, processor *Processor, reporter Reporter, logger *logging.Logger, cfg config.Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	svc := &Service{
		store:     store,
		processor: processor,
		reporter:  reporter,
		logger:    logger,
		config:    cfg,
		tasks:     make(chan models.Task, cfg.Notification.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
		wsManager: NewWebSocketManager(logger),
	}
	processor.AddSink(svc.wsManager)
	return svc
}

// Logger exposes the Service's logger
func (s *Service) Logger() *logging.Logger {
	return s.logger
}

// NewTask creates a task with a fresh request ID.
func NewTask(reason, spotSlug string) models.Task {
	return models.Task{
		RequestID: uuid.NewString(),
		SpotSlug:  spotSlug,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

// Start launches the worker pool and, when an interval is configured, the scheduler.
func (s *Service) Start(wg *sync.WaitGroup) {
	s.wg = wg
	for i := 0; i < s.config.Notification.MaxWorkers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	if s.config.Schedule.Interval > 0 {
		s.wg.Add(1)
		go s.scheduler(s.config.Schedule.Interval)
	}
}

// Stop cancels workers and the scheduler; wait on the WaitGroup passed to Start.
func (s *Service) Stop() {
	s.cancel()
}

// QueueTask enqueues a Task for processing. It reports false when the queue is full.
func (s *Service) QueueTask(task models.Task) bool {
	select {
	case s.tasks <- task:
		s.logger.Infof("Queued task: request_id=%s reason=%s", task.RequestID, task.Reason)
		return true
	default:
		s.logger.Errorf("Queue full, dropping task: request_id=%s", task.RequestID)
		return false
	}
}

// worker processes Tasks until context is cancelled
func (s *Service) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Worker %d stopped", id)
			return
		case task := <-s.tasks:
			if _, err := s.RunCycle(s.ctx, task); err != nil {
				s.logger.Errorf("Cycle %s failed: %v", task.RequestID, err)
			}
		}
	}
}

func (s *Service) scheduler(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.logger.Infof("Scheduler started, interval %s", interval)
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Scheduler stopped")
			return
		case <-ticker.C:
			s.QueueTask(NewTask(models.ReasonSchedule, ""))
		}
	}
}

// RunCycle loads active preferences, optionally restricted to the task's spot,
// processes them and reports the summary.
func (s *Service) RunCycle(ctx context.Context, task models.Task) (models.CycleSummary, error) {
	log := s.logger.WithFields(map[string]interface{}{"request_id": task.RequestID, "reason": task.Reason})

	prefs, err := s.store.ListActivePreferences(ctx)
	if err != nil {
		return models.CycleSummary{}, fmt.Errorf("failed to load active preferences: %w", err)
	}
	if task.SpotSlug != "" {
		filtered := prefs[:0]
		for _, p := range prefs {
			if p.SpotSlug == task.SpotSlug {
				filtered = append(filtered, p)
			}
		}
		prefs = filtered
	}

	log.Infof("Processing %d active preferences", len(prefs))
	summary := s.processor.Process(ctx, prefs)
	summary.RequestID = task.RequestID

	log.Infof("Cycle done: notified=%d throttled=%d no_match=%d failed=%d",
		summary.Count(models.OutcomeNotified), summary.Count(models.OutcomeThrottled),
		summary.Count(models.OutcomeNoMatch), summary.Count(models.OutcomeFailed))

	if s.reporter != nil {
		if err := s.reporter.Report(ctx, summary); err != nil {
			log.Warnf("Failed to send cycle report: %v", err)
		}
	}

	s.mu.Lock()
	s.lastSummary = &summary
	s.mu.Unlock()
	return summary, nil
}

// LastSummary returns the most recent cycle summary, if any.
func (s *Service) LastSummary() (models.CycleSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSummary == nil {
		return models.CycleSummary{}, false
	}
	return *s.lastSummary, true
}

// AddWebSocketConnection adds a WebSocket connection for a subscriber
func (s *Service) AddWebSocketConnection(email string, conn *websocket.Conn) bool {
	return s.wsManager.AddConnection(email, conn)
}

// RemoveWebSocketConnection removes a WebSocket connection for a subscriber
func (s *Service) RemoveWebSocketConnection(email string, conn *websocket.Conn) {
	s.wsManager.RemoveConnection(email, conn)
}
