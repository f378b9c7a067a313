package models

// LFN is a Logical File Name: an opaque string identifying a data object
// independent of physical location.
type LFN = string

// SEName is a storage-element name.
type SEName = string

// SiteReplicaRecord counts, for one site, how many of a job's input files
// have a replica on disk vs. on tape at that site. Invariant:
// 0 <= Disk+Tape <= total input files.
type SiteReplicaRecord struct {
	Disk int
	Tape int
}

// HasAllInput reports whether this site holds a replica (disk or tape) of
// every one of the job's numInputFiles input files.
func (r SiteReplicaRecord) HasAllInput(numInputFiles int) bool {
	return r.Disk+r.Tape == numInputFiles
}

// OptimizerRecord is the persisted output of the upstream "InputData"
// optimizer stage: per-site replica counts, plus a flat replica catalog
// (LFN -> set of storage-element names holding a replica of it).
//
// The flat ReplicaSEs map stands in for the source's deeply nested
// opData['Value']['Value']['Successful'] structure (see SPEC_FULL.md §9).
// Records are stored and read in this flat form, so the scheduling core
// never sees the nesting; no code in this repository reads the nested shape.
type OptimizerRecord struct {
	SiteCandidates map[string]SiteReplicaRecord
	ReplicaSEs     map[LFN]map[SEName]struct{}
}

// CloneSiteCandidates returns a shallow copy of the site-candidate map, so
// callers can mutate per-site records without aliasing the stored record
// until they are ready to persist the result back.
func (r *OptimizerRecord) CloneSiteCandidates() map[string]SiteReplicaRecord {
	out := make(map[string]SiteReplicaRecord, len(r.SiteCandidates))
	for site, rec := range r.SiteCandidates {
		out[site] = rec
	}
	return out
}

// StorageEndpoint is a named storage endpoint with its runtime capability
// flags, as reported by StorageElement.getStatus() in the source system.
type StorageEndpoint struct {
	Name   SEName
	Read   bool
	Write  bool
	DiskSE bool
	TapeSE bool
}

// IsTapeRead reports whether this endpoint can be read from tape.
func (e StorageEndpoint) IsTapeRead() bool {
	return e.Read && e.TapeSE
}

// IsDiskRead reports whether this endpoint can be read from disk.
func (e StorageEndpoint) IsDiskRead() bool {
	return e.Read && e.DiskSE
}

// StageRequest maps a storage endpoint to the ordered list of LFNs to be
// staged from it. After minimization (§4.E), every LFN appears in at most
// one SE's list and every SE maps to a non-empty list.
type StageRequest map[SEName][]LFN

// TotalLFNs returns the number of distinct LFNs across all SEs.
func (r StageRequest) TotalLFNs() int {
	seen := make(map[LFN]struct{})
	for _, lfns := range r {
		for _, lfn := range lfns {
			seen[lfn] = struct{}{}
		}
	}
	return len(seen)
}
