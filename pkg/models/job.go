package models

import "time"

// Well-known job attribute keys, read and written by the scheduling core.
const (
	AttrRescheduleCounter = "RescheduleCounter"
	AttrRescheduleTime    = "RescheduleTime"
	AttrApplicationStatus = "ApplicationStatus"
	AttrJobType           = "JobType"
	AttrOwner             = "Owner"
	AttrOwnerGroup        = "OwnerGroup"
	AttrSite              = "Site"
)

// Well-known job parameter keys.
const (
	ParamStageRequest = "StageRequest"
)

// Manifest option names read by the requirements extractor (§4.B).
const (
	OptionSite                = "Site"
	OptionBannedSites         = "BannedSites"
	OptionBannedSite          = "BannedSite"
	OptionVirtualOrganization = "VirtualOrganization"
)

// JobStatus is the three-part status DIRAC-style jobs carry: a major state,
// a minor state, and an optional application-level status string, each
// written by a named source (the component that last touched it).
type JobStatus struct {
	Major             string
	Minor             string
	ApplicationStatus string
	Source            string
}

// JobRecord is the plain-data snapshot of a job as stored by a JobStateStore
// implementation. It is the wire/storage shape that JobStateStore.Load
// hands to the scheduling core, which reads it directly.
type JobRecord struct {
	JID        int64
	Attributes map[string]string
	Manifest   *Manifest
	InputData  []string
	Status     JobStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Attribute returns an attribute's value and whether it is set, mirroring the way the
// scheduling core reads individual attributes off a loaded snapshot.
func (j *JobRecord) Attribute(key string) (string, bool) {
	v, ok := j.Attributes[key]
	return v, ok
}
