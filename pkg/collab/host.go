package collab

import (
	"context"
	"strconv"
	"time"

	"github.com/dirac-wms/jobsched/pkg/models"
	"github.com/dirac-wms/jobsched/pkg/taskqueue"
)

// DefaultOptimizerHost implements OptimizerHost against a JobStateStore
// (for freezing/rescheduling) and a taskqueue.Forwarder (for handing a
// Forward decision to the downstream Task Queue).
type DefaultOptimizerHost struct {
	Jobs      JobStateStore
	Forwarder taskqueue.Forwarder
	Options   map[string][]string
}

// NewDefaultOptimizerHost builds a host collaborator.
func NewDefaultOptimizerHost(jobs JobStateStore, forwarder taskqueue.Forwarder, options map[string][]string) *DefaultOptimizerHost {
	return &DefaultOptimizerHost{Jobs: jobs, Forwarder: forwarder, Options: options}
}

// ExOption returns a configured option list, or def if unset.
func (h *DefaultOptimizerHost) ExOption(name string, def []string) []string {
	if v, ok := h.Options[name]; ok {
		return v
	}
	return def
}

// FreezeTask records the reschedule bookkeeping a Hold outcome needs:
// bumping RescheduleCounter and stamping RescheduleTime with the moment
// the hold began, read back by the orchestrator's backoff check (which
// derives the actual delay from RescheduleCounter against
// config.RescheduleDelays) on the next poll. delaySeconds is the delay
// the orchestrator already computed for this hold; FreezeTask only needs
// to anchor the clock, not persist the delay itself.
func (h *DefaultOptimizerHost) FreezeTask(ctx context.Context, jid int64, _ int) error {
	job, err := h.Jobs.Load(ctx, jid)
	if err != nil {
		return err
	}

	counter := 0
	if v, ok := job.Attribute(models.AttrRescheduleCounter); ok {
		counter, _ = strconv.Atoi(v)
	}
	counter++

	if err := h.Jobs.SetAttribute(ctx, jid, models.AttrRescheduleCounter, strconv.Itoa(counter)); err != nil {
		return err
	}
	return h.Jobs.SetAttribute(ctx, jid, models.AttrRescheduleTime, time.Now().Format(time.RFC3339))
}

// SetNextOptimizer forwards the job to the downstream Task Queue.
func (h *DefaultOptimizerHost) SetNextOptimizer(ctx context.Context, jid int64) error {
	if h.Forwarder == nil {
		return nil
	}
	return h.Forwarder.Forward(ctx, jid)
}
