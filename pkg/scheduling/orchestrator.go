package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/dirac-wms/jobsched/pkg/collab"
	"github.com/dirac-wms/jobsched/pkg/config"
	"github.com/dirac-wms/jobsched/pkg/models"
)

const sourceName = "JobScheduling"

// Orchestrator sequences components A-H per job (§4.I). It is the only
// piece of the scheduling core that talks to collaborators; everything it
// delegates to is a pure function over plain values.
type Orchestrator struct {
	Jobs            collab.JobStateStore
	Operations      collab.Operations
	Registry        collab.Registry
	Files           collab.FileCatalog
	Sites           collab.SiteCatalog
	SEStatus        collab.StorageElementStatus
	Stager          collab.StagerClient
	OptimizerParams collab.OptimizerParamStore
	Host            collab.OptimizerHost
	Tiers           collab.SiteTier
	Events          collab.EventPublisher // optional, nil-safe
	Config          *config.SchedulingConfig

	// NewRNG builds a fresh Shuffler for one orchestration call (the
	// per-call cache note of spec.md §5). Tests inject a deterministic
	// source; production wires math/rand/v2.
	NewRNG func() Shuffler
}

// Run executes the orchestrator for a single job (§4.I steps 1-20).
func (o *Orchestrator) Run(ctx context.Context, jid int64) (Outcome, error) {
	log := slog.With("job_id", jid, "component", "scheduling.Orchestrator")

	job, err := o.Jobs.Load(ctx, jid)
	if err != nil {
		log.Error("failed to load job", "error", err)
		return Outcome{}, fmt.Errorf("loading job %d: %w", jid, err)
	}

	// Step 1: reschedule back-off.
	if outcome, done, err := o.checkRescheduleBackoff(ctx, job, log); done {
		return outcome, err
	}

	// Step 2: requirements.
	reqs, err := ExtractRequirements(job.Manifest)
	if err != nil {
		log.Info("failing: impossible site requirement", "error", err)
		return o.fail(ctx, jid, err.Error()), nil
	}

	// Step 3: job type.
	jobType, ok := job.Attribute(models.AttrJobType)
	if !ok || jobType == "" {
		return o.fail(ctx, jid, "missing JobType attribute"), nil
	}

	// Step 4: WMS banned sites.
	wmsBanned, err := o.Jobs.SiteMaskBanned(ctx, jid)
	if err != nil {
		log.Error("failed to read banned site mask", "error", err)
		return o.fail(ctx, jid, fmt.Sprintf("getting banned site mask: %v", err)), nil
	}

	// Step 5: user sites vs. WMS-banned.
	excluded := o.Config.ExcludedOnHoldJobTypes
	if len(reqs.Sites) > 0 && !contains(excluded, jobType) {
		active := FilterBannedSites(reqs.Sites, wmsBanned)
		if len(active) == 0 {
			msg := fmt.Sprintf("Requested site(s) %v are inactive", reqs.Sites)
			log.Info("holding", "message", msg)
			return o.hold(ctx, jid, msg, o.holdTime()), nil
		}
	}

	// Step 6: no input data -> forward.
	if len(job.InputData) == 0 {
		return o.sendToTQ(ctx, job, reqs.Sites, reqs.BannedSites, log)
	}

	// Step 7: production-job shortcut.
	if contains(o.Operations.GetValue(ctx, "Transformations/DataProcessing", nil), jobType) {
		return o.runProductionShortcut(ctx, job, reqs, log)
	}

	// Step 8: user job with input data - load optimizer record.
	recordResult := o.loadOptimizerRecord(ctx, jid)
	if !recordResult.OK() {
		return o.fail(ctx, jid, recordResult.Error().Error()), nil
	}
	record := recordResult.Value()

	// Step 9: intersect.
	intersected := IntersectSiteCandidates(record.SiteCandidates, reqs.Sites, reqs.BannedSites)
	if len(intersected) == 0 {
		return o.fail(ctx, jid, ErrEmptyIntersection.Error()), nil
	}

	// Step 10: drop incomplete-input sites.
	complete := FilterCompleteSites(intersected, len(job.InputData))
	if len(complete) == 0 {
		return o.fail(ctx, jid, ErrIncompleteReplicas.Error()), nil
	}

	// Step 11: staging resolver.
	rng := Shuffler(nil)
	if o.NewRNG != nil {
		rng = o.NewRNG()
	}
	decision := ResolveStaging(rng, len(job.InputData), complete)

	// Step 12: filter candidates against WMS-banned sites.
	filtered := FilterBannedSites(decision.CandidateSites, wmsBanned)
	if len(filtered) == 0 {
		msg := fmt.Sprintf("Sites %v are inactive or banned", decision.CandidateSites)
		log.Info("holding", "message", msg)
		return o.hold(ctx, jid, msg, o.holdTime()), nil
	}

	// Step 13: no staging required -> forward with pre-WMS-filter candidates.
	if !decision.StageRequired {
		return o.sendToTQ(ctx, job, decision.CandidateSites, reqs.BannedSites, log)
	}

	// Step 14: restrict-data-stage gate.
	if o.Config.RestrictDataStage {
		allowed, err := o.checkStageAllowed(ctx, job)
		if err != nil {
			return o.fail(ctx, jid, err.Error()), nil
		}
		if !allowed {
			return o.fail(ctx, jid, ErrStageNotAllowed.Error()), nil
		}
	}

	// Step 15: pick stage site, rewrite its replica record as staged.
	stageSite := filtered[0]
	stageRec := record.SiteCandidates[stageSite]
	stageRec.Disk += stageRec.Tape
	stageRec.Tape = 0
	record.SiteCandidates[stageSite] = stageRec

	// Step 16: build stage request.
	class, err := o.classifySite(ctx, stageSite, job.Manifest)
	if err != nil {
		return o.fail(ctx, jid, err.Error()), nil
	}
	stageReq, err := BuildStageRequest(job.InputData, record.ReplicaSEs, class)
	if err != nil {
		return o.fail(ctx, jid, err.Error()), nil
	}

	// Step 17: dispatch.
	if err := o.dispatchStageRequest(ctx, jid, stageReq, log); err != nil {
		return o.fail(ctx, jid, err.Error()), nil
	}

	// Step 18: shared-SE update.
	o.updateSharedSEsForSiblings(ctx, record, stageSite, stageReq, log)

	// Step 19: persist updated optimizer record.
	if err := o.OptimizerParams.StoreOptimizerParam(ctx, jid, o.Config.InputDataAgent, record); err != nil {
		log.Error("failed to persist optimizer record", "error", err)
		return o.fail(ctx, jid, fmt.Sprintf("storing optimizer record: %v", err)), nil
	}

	// Step 20: assign site.
	o.assignSite(ctx, jid, filtered, log)

	if err := o.Host.SetNextOptimizer(ctx, jid); err != nil {
		return o.fail(ctx, jid, fmt.Sprintf("forwarding job: %v", err)), nil
	}
	return Forward(), nil
}

// loadOptimizerRecord wraps the collaborator call in a Result so the two
// distinct failure shapes (I/O error, and a structurally-incomplete record)
// collapse into the single branch the source's S_ERROR check makes.
func (o *Orchestrator) loadOptimizerRecord(ctx context.Context, jid int64) models.Result[*models.OptimizerRecord] {
	record, err := o.OptimizerParams.RetrieveOptimizerParam(ctx, jid, o.Config.InputDataAgent)
	if err != nil || record == nil || record.SiteCandidates == nil {
		return models.Err[*models.OptimizerRecord](ErrNoSiteCandidates)
	}
	return models.Ok(record)
}

func (o *Orchestrator) checkRescheduleBackoff(ctx context.Context, job *models.JobRecord, log *slog.Logger) (Outcome, bool, error) {
	counterStr, ok := job.Attribute(models.AttrRescheduleCounter)
	if !ok || counterStr == "" {
		return Outcome{}, false, nil
	}
	counter, err := strconv.Atoi(counterStr)
	if err != nil {
		return o.fail(ctx, job.JID, ErrInvalidRescheduleCounter.Error()), true, nil
	}
	if counter <= 0 {
		return Outcome{}, false, nil
	}

	delays := o.Config.RescheduleDelays
	idx := counter
	if idx > len(delays)-1 {
		idx = len(delays) - 1
	}
	delay := time.Duration(delays[idx]) * time.Second

	rescheduleTimeStr, _ := job.Attribute(models.AttrRescheduleTime)
	rescheduleTime, err := time.Parse(time.RFC3339, rescheduleTimeStr)
	if err != nil {
		// No parseable timestamp: treat as "just rescheduled", i.e. hold.
		rescheduleTime = time.Now()
	}

	elapsed := time.Since(rescheduleTime)
	if elapsed < delay {
		msg := fmt.Sprintf("On Hold: after rescheduling %d", counter)
		log.Info("holding for reschedule back-off", "message", msg, "remaining", delay-elapsed)
		return o.hold(ctx, job.JID, msg, delay-elapsed), true, nil
	}
	return Outcome{}, false, nil
}

func (o *Orchestrator) runProductionShortcut(ctx context.Context, job *models.JobRecord, reqs Requirements, log *slog.Logger) (Outcome, error) {
	jid := job.JID
	owner, _ := job.Attribute(models.AttrOwner)
	ownerGroup, _ := job.Attribute(models.AttrOwnerGroup)

	result, err := o.Files.GetFilesToStage(ctx, job.InputData, owner, ownerGroup)
	if err != nil {
		msg := fmt.Sprintf("getting files to stage: %v", err)
		log.Info("holding", "message", msg)
		return o.hold(ctx, jid, msg, o.holdTime()), nil
	}

	if len(result.OfflineLFNs) == 0 {
		return o.sendToTQ(ctx, job, reqs.Sites, reqs.BannedSites, log)
	}

	allowed, err := o.checkStageAllowed(ctx, job)
	if err != nil {
		return o.fail(ctx, jid, err.Error()), nil
	}
	if !allowed {
		return o.fail(ctx, jid, ErrStageNotAllowed.Error()), nil
	}

	stageReq := models.StageRequest{"": result.OfflineLFNs}
	if err := o.dispatchStageRequest(ctx, jid, stageReq, log); err != nil {
		return o.fail(ctx, jid, err.Error()), nil
	}
	return Forward(), nil
}

func (o *Orchestrator) checkStageAllowed(ctx context.Context, job *models.JobRecord) (bool, error) {
	group, _ := job.Attribute(models.AttrOwnerGroup)
	props, err := o.Registry.GetPropertiesForGroup(ctx, group)
	if err != nil {
		return false, fmt.Errorf("checking stage permission: %w", err)
	}
	_, allowed := props["STAGE_ALLOWED"]
	return allowed, nil
}

func (o *Orchestrator) classifySite(ctx context.Context, site string, manifest *models.Manifest) (SEClassification, error) {
	seNames, err := o.Sites.GetSEsForSite(ctx, site)
	if err != nil {
		return SEClassification{}, fmt.Errorf("getting SEs for site %s: %w", site, err)
	}

	vo := manifest.GetOptionString(models.OptionVirtualOrganization, "")
	endpoints := make([]models.StorageEndpoint, 0, len(seNames))
	for _, se := range seNames {
		status, err := o.SEStatus.GetStatus(ctx, se, vo)
		if err != nil {
			return SEClassification{}, fmt.Errorf("getting status for SE %s: %w", se, err)
		}
		endpoints = append(endpoints, status)
	}

	class := ClassifySEs(endpoints)
	if len(class.TapeSEs) == 0 {
		return SEClassification{}, fmt.Errorf("%w: %s", ErrNoLocalSEs, site)
	}
	return class, nil
}

func (o *Orchestrator) dispatchStageRequest(ctx context.Context, jid int64, req models.StageRequest, log *slog.Logger) error {
	oldMajor, oldMinor := o.Config.StagingStatus, o.Config.StagingStatusRequestToBeSent
	if err := o.Jobs.SetStatus(ctx, jid, o.Config.StagingStatus, o.Config.StagingStatusRequestToBeSent, "", sourceName); err != nil {
		return fmt.Errorf("setting request-to-be-sent status: %w", err)
	}
	o.publishStatusChange(ctx, jid, "", "", oldMajor, oldMinor)

	requestID, err := o.Stager.SetRequest(ctx, req, "WorkloadManagement", "updateJobFromStager@WorkloadManagement/JobStateUpdate", jid)
	if err != nil {
		return fmt.Errorf("problem sending staging request: %w", err)
	}

	if err := o.Jobs.SetParameter(ctx, jid, models.ParamStageRequest, requestID); err != nil {
		return fmt.Errorf("storing stage request id: %w", err)
	}

	if err := o.Jobs.SetStatus(ctx, jid, o.Config.StagingStatus, o.Config.StagingStatusRequestSent, "", sourceName); err != nil {
		return fmt.Errorf("setting request-sent status: %w", err)
	}
	o.publishStatusChange(ctx, jid, oldMajor, oldMinor, o.Config.StagingStatus, o.Config.StagingStatusRequestSent)

	log.Info("stage request dispatched", "request_id", requestID)
	return nil
}

func (o *Orchestrator) updateSharedSEsForSiblings(ctx context.Context, record *models.OptimizerRecord, stageSite string, stageReq models.StageRequest, log *slog.Logger) {
	views := make(map[string]SiteSEView, len(record.SiteCandidates))
	statusCache := make(map[string]models.StorageEndpoint)
	for site := range record.SiteCandidates {
		if site == stageSite {
			continue
		}
		seNames, err := o.Sites.GetSEsForSite(ctx, site)
		if err != nil {
			log.Warn("skipping sibling site: failed to resolve SEs", "site", site, "error", err)
			continue
		}

		closeSEs := make(map[string]struct{}, len(seNames))
		diskSEs := make(map[string]struct{})
		for _, se := range seNames {
			closeSEs[se] = struct{}{}
			status, cached := statusCache[se]
			if !cached {
				var err error
				status, err = o.SEStatus.GetStatus(ctx, se, "")
				if err != nil {
					log.Warn("skipping SE: status lookup failed", "se", se, "error", err)
					continue
				}
				statusCache[se] = status
			}
			if status.IsDiskRead() {
				diskSEs[se] = struct{}{}
			}
		}
		views[site] = SiteSEView{CloseSEs: closeSEs, DiskSEs: diskSEs}
	}

	UpdateSharedSEs(record.SiteCandidates, stageSite, stageReq, record.ReplicaSEs, views)
}

func (o *Orchestrator) assignSite(ctx context.Context, jid int64, sites []string, log *slog.Logger) {
	value := SummarizeSiteAssignment(sites, func(site string) (int, error) {
		return o.Tiers.GetSiteTier(ctx, site)
	})
	if err := o.Jobs.SetAttribute(ctx, jid, models.AttrSite, value); err != nil {
		log.Error("failed to set Site attribute", "error", err)
	}
}

func (o *Orchestrator) sendToTQ(ctx context.Context, job *models.JobRecord, sites, bannedSites []string, log *slog.Logger) (Outcome, error) {
	jid := job.JID
	WriteJobRequirementsSection(job.Manifest, sites, bannedSites)
	if err := o.Jobs.SaveManifest(ctx, jid, job.Manifest); err != nil {
		log.Error("failed to save manifest", "error", err)
	}
	o.assignSite(ctx, jid, sites, log)
	if err := o.Host.SetNextOptimizer(ctx, jid); err != nil {
		return o.fail(ctx, jid, fmt.Sprintf("forwarding job: %v", err)), nil
	}
	return Forward(), nil
}

func (o *Orchestrator) fail(ctx context.Context, jid int64, message string) Outcome {
	if err := o.Jobs.SetAppStatus(ctx, jid, message, sourceName); err != nil {
		slog.Error("failed to set failure app status", "job_id", jid, "error", err)
	}
	return Fail(message)
}

func (o *Orchestrator) hold(ctx context.Context, jid int64, message string, delay time.Duration) Outcome {
	if err := o.Host.FreezeTask(ctx, jid, int(math.Ceil(delay.Seconds()))); err != nil {
		slog.Error("failed to freeze task", "job_id", jid, "error", err)
	}
	if err := o.Jobs.SetAppStatus(ctx, jid, message, sourceName); err != nil {
		slog.Error("failed to set hold app status", "job_id", jid, "error", err)
	}
	return Hold(message, delay)
}

func (o *Orchestrator) holdTime() time.Duration {
	return time.Duration(o.Config.HoldTime) * time.Second
}

func (o *Orchestrator) publishStatusChange(ctx context.Context, jid int64, oldMajor, oldMinor, newMajor, newMinor string) {
	if o.Events == nil {
		return
	}
	o.Events.PublishStatusChange(ctx, jid, oldMajor, oldMinor, newMajor, newMinor)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
