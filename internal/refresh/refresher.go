package refresh

import "go.uber.org/zap"

// Refresher triggers a dashboard data refresh after a successful mutation.
// The mutation code calls only this interface; which implementation runs
// is decided once at composition time from the host context.
type Refresher interface {
	Refresh()
}

// TimeRangeConsumer is the scene-graph handle whose time range can be
// re-run in isolation.
type TimeRangeConsumer interface {
	RefreshTimeRange()
}

// ScopedRefresher refreshes only the owning scene's time range consumer.
type ScopedRefresher struct {
	target TimeRangeConsumer
	logger *zap.Logger
}

func NewScopedRefresher(log *zap.Logger, target TimeRangeConsumer) *ScopedRefresher {
	return &ScopedRefresher{target: target, logger: log}
}

func (r *ScopedRefresher) Refresh() {
	r.logger.Debug("Refreshing scoped time range")
	r.target.RefreshTimeRange()
}

// BroadcastRefresher publishes a generic refresh signal on the bus,
// causing a dashboard-wide re-query.
type BroadcastRefresher struct {
	bus    *Bus
	logger *zap.Logger
}

func NewBroadcastRefresher(log *zap.Logger, bus *Bus) *BroadcastRefresher {
	return &BroadcastRefresher{bus: bus, logger: log}
}

func (r *BroadcastRefresher) Refresh() {
	r.logger.Debug("Broadcasting refresh signal")
	r.bus.Publish()
}
