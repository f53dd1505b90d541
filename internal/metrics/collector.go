package metrics

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StatsSource provides functions to retrieve current counts for gauge
// metrics. Nil functions are skipped.
type StatsSource struct {
	PendingReportCount func() int
	BannedUserCount    func() int
	TopicCount         func() int
	PostCount          func() int
}

// StartCollector launches a goroutine that periodically updates gauge
// metrics. It runs every interval until the context is cancelled.
func StartCollector(ctx context.Context, src StatsSource, interval time.Duration) {
	collect(src)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				collect(src)
			}
		}
	}()

	log.Info().Dur("interval", interval).Msg("Metrics collector started")
}

func collect(src StatsSource) {
	if src.PendingReportCount != nil {
		ReportsPending.Set(float64(src.PendingReportCount()))
	}
	if src.BannedUserCount != nil {
		UsersBanned.Set(float64(src.BannedUserCount()))
	}
	if src.TopicCount != nil {
		TopicsTotal.Set(float64(src.TopicCount()))
	}
	if src.PostCount != nil {
		PostsTotal.Set(float64(src.PostCount()))
	}
}
