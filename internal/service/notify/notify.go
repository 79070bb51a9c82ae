// Package notify pushes inventory events out of the system: batch depletion
// alerts fired by the inventory service and the scheduled stock summaries.
// Delivery is best effort; failures are logged and dropped, never retried.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poster is the outbound transport (the webhook client in production).
type Poster interface {
	Enabled() bool
	Post(ctx context.Context, payload interface{}) error
}

// Event is the JSON body delivered to the webhook.
type Event struct {
	Kind      string    `json:"kind"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Service implements the inventory.Notifier contract plus the summary push.
type Service struct {
	poster Poster
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the notification service.
func NewService(poster Poster, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{poster: poster, logger: logger, now: time.Now}
}

// BatchDepleted announces that a batch ran out of vessels.
func (s *Service) BatchDepleted(ctx context.Context, code string) {
	s.send(ctx, Event{
		Kind:      "batch_depleted",
		Code:      code,
		Message:   "Lote " + code + " agotado: sin frascos disponibles.",
		Timestamp: s.now().UTC(),
	})
}

// DailySummary pushes the rendered stock summary text.
func (s *Service) DailySummary(ctx context.Context, text string) {
	s.send(ctx, Event{
		Kind:      "daily_summary",
		Message:   text,
		Timestamp: s.now().UTC(),
	})
}

func (s *Service) send(ctx context.Context, event Event) {
	if s.poster == nil || !s.poster.Enabled() {
		return
	}
	if err := s.poster.Post(ctx, event); err != nil {
		s.logger.Warn("notification dropped", zap.String("kind", event.Kind), zap.Error(err))
		return
	}
	s.logger.Debug("notification sent", zap.String("kind", event.Kind), zap.String("code", event.Code))
}
