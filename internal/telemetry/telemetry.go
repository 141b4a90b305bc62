package telemetry

import (
	analytics "github.com/segmentio/analytics-go/v3"
	"go.uber.org/zap"
)

// Tracker reports panel interaction events. With no write key configured
// it degrades to a no-op so callers never have to branch.
type Tracker struct {
	client analytics.Client
	logger *zap.Logger
}

func New(writeKey string, logger *zap.Logger) *Tracker {
	t := &Tracker{logger: logger}
	if writeKey == "" {
		return t
	}
	t.client = analytics.New(writeKey)
	return t
}

// Track enqueues one event; delivery is asynchronous and best-effort.
func (t *Tracker) Track(userID, event string, properties map[string]any) {
	if t.client == nil {
		return
	}
	props := analytics.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	if userID == "" {
		userID = "anonymous"
	}
	if err := t.client.Enqueue(analytics.Track{
		UserId:     userID,
		Event:      event,
		Properties: props,
	}); err != nil {
		t.logger.Warn("failed to enqueue telemetry event",
			zap.String("event", event),
			zap.Error(err))
	}
}

func (t *Tracker) Close() {
	if t.client == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		t.logger.Warn("failed to close telemetry client", zap.Error(err))
	}
}
