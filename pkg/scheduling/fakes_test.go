package scheduling_test

import (
	"context"
	"fmt"

	"github.com/dirac-wms/jobsched/pkg/collab"
	"github.com/dirac-wms/jobsched/pkg/models"
)

// fakeJobStore is a minimal in-memory collab.JobStateStore, following the
// teacher's hand-written-stub test style (no mocking framework).
type fakeJobStore struct {
	jobs          map[int64]*models.JobRecord
	bannedMask    map[int64][]string
	setStatusLog  []string
	failIOError   error
}

func newFakeJobStore(job *models.JobRecord) *fakeJobStore {
	return &fakeJobStore{
		jobs:       map[int64]*models.JobRecord{job.JID: job},
		bannedMask: map[int64][]string{},
	}
}

func (f *fakeJobStore) Load(_ context.Context, jid int64) (*models.JobRecord, error) {
	j, ok := f.jobs[jid]
	if !ok {
		return nil, collab.ErrJobNotFound
	}
	return j, nil
}

func (f *fakeJobStore) SetAttribute(_ context.Context, jid int64, key, value string) error {
	f.jobs[jid].Attributes[key] = value
	return nil
}

func (f *fakeJobStore) SetStatus(_ context.Context, jid int64, major, minor, appStatus, source string) error {
	f.setStatusLog = append(f.setStatusLog, fmt.Sprintf("%s/%s", major, minor))
	j := f.jobs[jid]
	j.Status.Major, j.Status.Minor, j.Status.Source = major, minor, source
	if appStatus != "" {
		j.Status.ApplicationStatus = appStatus
	}
	return nil
}

func (f *fakeJobStore) SetAppStatus(_ context.Context, jid int64, msg, source string) error {
	j := f.jobs[jid]
	j.Status.ApplicationStatus = msg
	j.Status.Source = source
	return nil
}

func (f *fakeJobStore) SetParameter(_ context.Context, jid int64, key, value string) error {
	if f.jobs[jid].Attributes == nil {
		f.jobs[jid].Attributes = map[string]string{}
	}
	f.jobs[jid].Attributes["param:"+key] = value
	return nil
}

func (f *fakeJobStore) SaveManifest(_ context.Context, jid int64, manifest *models.Manifest) error {
	f.jobs[jid].Manifest = manifest
	return nil
}

func (f *fakeJobStore) SiteMaskBanned(_ context.Context, jid int64) ([]string, error) {
	if f.failIOError != nil {
		return nil, f.failIOError
	}
	return f.bannedMask[jid], nil
}

// fakeOperations implements collab.Operations over a plain map.
type fakeOperations struct {
	values map[string][]string
}

func (f *fakeOperations) GetValue(_ context.Context, path string, def []string) []string {
	if v, ok := f.values[path]; ok {
		return v
	}
	return def
}

// fakeRegistry implements collab.Registry over a plain map.
type fakeRegistry struct {
	groups map[string][]string
}

func (f *fakeRegistry) GetPropertiesForGroup(_ context.Context, group string) (map[string]struct{}, error) {
	props := f.groups[group]
	set := make(map[string]struct{}, len(props))
	for _, p := range props {
		set[p] = struct{}{}
	}
	return set, nil
}

// fakeFileCatalog implements collab.FileCatalog.
type fakeFileCatalog struct {
	offlineLFNs []string
	err         error
}

func (f *fakeFileCatalog) GetFilesToStage(_ context.Context, _ []string, _, _ string) (collab.FilesToStageResult, error) {
	if f.err != nil {
		return collab.FilesToStageResult{}, f.err
	}
	return collab.FilesToStageResult{OfflineLFNs: f.offlineLFNs}, nil
}

// fakeSiteCatalog implements collab.SiteCatalog over a plain map.
type fakeSiteCatalog struct {
	ses map[string][]string
}

func (f *fakeSiteCatalog) GetSEsForSite(_ context.Context, site string) ([]string, error) {
	ses, ok := f.ses[site]
	if !ok {
		return nil, fmt.Errorf("no SEs configured for site %s", site)
	}
	return ses, nil
}

// fakeSEStatus implements collab.StorageElementStatus over a plain map.
type fakeSEStatus struct {
	statuses map[string]models.StorageEndpoint
}

func (f *fakeSEStatus) GetStatus(_ context.Context, seName, _ string) (models.StorageEndpoint, error) {
	s, ok := f.statuses[seName]
	if !ok {
		return models.StorageEndpoint{}, fmt.Errorf("unknown SE %s", seName)
	}
	return s, nil
}

// fakeStager implements collab.StagerClient.
type fakeStager struct {
	requestID string
	err       error
	lastReq   models.StageRequest
}

func (f *fakeStager) SetRequest(_ context.Context, req models.StageRequest, _, _ string, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastReq = req
	if f.requestID == "" {
		return "req-1", nil
	}
	return f.requestID, nil
}

// fakeOptimizerParamStore implements collab.OptimizerParamStore over a map.
type fakeOptimizerParamStore struct {
	records map[string]*models.OptimizerRecord
}

func (f *fakeOptimizerParamStore) RetrieveOptimizerParam(_ context.Context, _ int64, name string) (*models.OptimizerRecord, error) {
	r, ok := f.records[name]
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (f *fakeOptimizerParamStore) StoreOptimizerParam(_ context.Context, _ int64, name string, record *models.OptimizerRecord) error {
	if f.records == nil {
		f.records = map[string]*models.OptimizerRecord{}
	}
	f.records[name] = record
	return nil
}

// fakeHost implements collab.OptimizerHost.
type fakeHost struct {
	frozen       bool
	freezeDelay  int
	forwarded    bool
	forwardErr   error
}

func (f *fakeHost) ExOption(_ string, def []string) []string { return def }

func (f *fakeHost) FreezeTask(_ context.Context, _ int64, delaySeconds int) error {
	f.frozen = true
	f.freezeDelay = delaySeconds
	return nil
}

func (f *fakeHost) SetNextOptimizer(_ context.Context, _ int64) error {
	if f.forwardErr != nil {
		return f.forwardErr
	}
	f.forwarded = true
	return nil
}

// fakeTiers implements collab.SiteTier over a plain map.
type fakeTiers struct {
	tiers map[string]int
}

func (f *fakeTiers) GetSiteTier(_ context.Context, site string) (int, error) {
	t, ok := f.tiers[site]
	if !ok {
		return 0, fmt.Errorf("unknown site %s", site)
	}
	return t, nil
}
