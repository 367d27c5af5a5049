// Package schedule runs recurring background jobs on cron expressions.
// The poster enrichment job is the only scheduled work today.
package schedule

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner wraps a cron scheduler with a shared base context so jobs stop
// receiving work once the process begins shutting down.
type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
}

// New constructs a Runner using standard 5-field cron expressions.
func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(),
		baseCtx: baseCtx,
	}
}

// Add schedules job on the given cron spec. The job receives the runner's
// base context.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		ctx := r.baseCtx
		if ctx == nil {
			ctx = context.Background()
		}
		job(ctx)
	})
}

// Start begins running scheduled jobs in the background.
func (r *Runner) Start() {
	log.Info().Msg("cron started")
	r.cron.Start()
}

// Stop halts scheduling and blocks until in-flight jobs finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("cron stopped")
}
