package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const refreshJobName = "dashboard_refresh"

// Refresher reloads dashboards according to their refresh policy.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// RegisterRefreshJob schedules the periodic dashboard refresh. Each run gets
// its own timeout so a stuck upstream cannot pin the job.
func (s *Service) RegisterRefreshJob(refresher Refresher, cronExpr string, timeout time.Duration) error {
	if refresher == nil {
		return fmt.Errorf("refresh job requires a refresher")
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	jobLogger := log.With().
		Str("component", "dashboard_refresh_job").
		Str("job_name", refreshJobName).
		Logger()

	_, err := s.AddJob(refreshJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if err := refresher.RefreshAll(ctx); err != nil {
			jobLogger.Error().Err(err).Msg("Dashboard refresh failed")
		}
	})
	return err
}

// RegisterRefreshJob registers the refresh job on the singleton scheduler.
func RegisterRefreshJob(refresher Refresher, cronExpr string, timeout time.Duration) error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	return svc.RegisterRefreshJob(refresher, cronExpr, timeout)
}
