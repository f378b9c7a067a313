// Package collab defines the collaborator contracts the scheduling core
// depends on (spec.md §6): job state persistence, site/SE catalogs, the
// stager RPC, and the small configuration-shaped lookups the source calls
// through JobDB/Operations/Registry. Concrete, runnable implementations
// live in pkg/catalog and in this package (StaticOperations, StaticRegistry,
// HTTPStagerClient).
package collab

import (
	"context"

	"github.com/dirac-wms/jobsched/pkg/models"
)

// JobStateStore is the persistence surface for a single job: attribute and
// status mutation, manifest access, and the job's banned-site mask. It
// subsumes the source's JobState + the persistence half of JobDB.
type JobStateStore interface {
	// Load returns the current snapshot of the job.
	Load(ctx context.Context, jid int64) (*models.JobRecord, error)

	// SetAttribute persists a single attribute.
	SetAttribute(ctx context.Context, jid int64, key, value string) error

	// SetStatus persists the three-part status, recording source as the
	// component that made the change.
	SetStatus(ctx context.Context, jid int64, major, minor, appStatus, source string) error

	// SetAppStatus persists only the application-status field.
	SetAppStatus(ctx context.Context, jid int64, msg, source string) error

	// SetParameter persists a named job parameter (e.g. "StageRequest").
	SetParameter(ctx context.Context, jid int64, key, value string) error

	// SaveManifest persists a (possibly mutated) manifest back to the job.
	SaveManifest(ctx context.Context, jid int64, manifest *models.Manifest) error

	// SiteMaskBanned returns the WMS-level banned site mask ("Banned").
	SiteMaskBanned(ctx context.Context, jid int64) ([]string, error)
}

// Operations mirrors the source's Operations CS helper: a read-only,
// hierarchically-configured value store. The scheduling core reads the
// production job type list ("Transformations/DataProcessing") through it;
// the excluded-on-hold job types come from config.SchedulingConfig.
type Operations interface {
	GetValue(ctx context.Context, path string, def []string) []string
}

// Registry mirrors the source's group-properties registry.
type Registry interface {
	GetPropertiesForGroup(ctx context.Context, group string) (map[string]struct{}, error)
}

// FilesToStageResult is the result of resolving which input LFNs actually
// require staging (as opposed to being already on disk or excluded).
type FilesToStageResult struct {
	OfflineLFNs []string
}

// FileCatalog resolves which of a job's input LFNs need staging.
type FileCatalog interface {
	GetFilesToStage(ctx context.Context, inputData []string, proxyUserName, proxyUserGroup string) (FilesToStageResult, error)
}

// SiteCatalog resolves the storage elements associated with a site.
type SiteCatalog interface {
	GetSEsForSite(ctx context.Context, site string) ([]string, error)
}

// StorageElementStatus resolves a storage element's runtime capability flags.
type StorageElementStatus interface {
	GetStatus(ctx context.Context, seName, vo string) (models.StorageEndpoint, error)
}

// SiteTier resolves a site's position in the site hierarchy (0 = top),
// backing the Site-Assignment Summarizer's tier-group logic (§4.H).
type SiteTier interface {
	GetSiteTier(ctx context.Context, site string) (int, error)
}

// StagerClient submits a stage request to the storage-management system and
// returns an opaque request id.
type StagerClient interface {
	SetRequest(ctx context.Context, req models.StageRequest, system, callbackSpec string, jobID int64) (string, error)
}

// OptimizerParamStore persists and retrieves the job's optimizer records
// (e.g. the "InputData" replica catalog), keyed by job id and record name.
type OptimizerParamStore interface {
	RetrieveOptimizerParam(ctx context.Context, jid int64, name string) (*models.OptimizerRecord, error)
	StoreOptimizerParam(ctx context.Context, jid int64, name string, record *models.OptimizerRecord) error
}

// OptimizerHost is the thin slice of the host optimizer-executor framework
// the orchestrator calls through directly: per-job options, freezing
// (rescheduling with a delay), and forwarding to the next optimizer.
type OptimizerHost interface {
	ExOption(name string, def []string) []string
	FreezeTask(ctx context.Context, jid int64, delaySeconds int) error
	SetNextOptimizer(ctx context.Context, jid int64) error
}

// EventPublisher is an optional, nil-safe sink for status-change
// notifications. A nil EventPublisher disables publishing entirely.
type EventPublisher interface {
	PublishStatusChange(ctx context.Context, jid int64, oldMajor, oldMinor, newMajor, newMinor string)
}
