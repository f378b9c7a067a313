package scheduling

import (
	"sort"

	"github.com/dirac-wms/jobsched/pkg/models"
)

// SEClassification is the tape/disk SE classification for a site, resolved
// by the orchestrator from SiteCatalog + StorageElementStatus before
// calling BuildStageRequest (§4.E steps 1-3).
type SEClassification struct {
	TapeSEs map[string]struct{}
	DiskSEs map[string]struct{}
}

// ClassifySEs partitions a site's storage endpoints into tape-read and
// disk-read sets. An endpoint that is both wins the disk classification for
// the purposes of §4.E's per-LFN scan (handled by the caller, which checks
// DiskSEs first); ClassifySEs itself just records both.
func ClassifySEs(endpoints []models.StorageEndpoint) SEClassification {
	c := SEClassification{
		TapeSEs: make(map[string]struct{}),
		DiskSEs: make(map[string]struct{}),
	}
	for _, se := range endpoints {
		if se.IsTapeRead() {
			c.TapeSEs[se.Name] = struct{}{}
		}
		if se.IsDiskRead() {
			c.DiskSEs[se.Name] = struct{}{}
		}
	}
	return c
}

// BuildStageRequest builds the minimal SE -> LFN stage map for inputData,
// given the replica catalog and the stage site's tape/disk SE sets (§4.E).
//
// For each input LFN: if any of its replica SEs is a disk SE, the LFN is
// already on disk at this site and nothing is emitted for it. Otherwise the
// LFN is attached, provisionally, to every one of its replica SEs that is a
// tape SE. The minimization pass then walks each LFN in input order against
// the SEs sorted by current list length (descending; ties broken by
// ascending SE name — see stagerequest_builder_test.go's S6 trace) and keeps
// only the first SE encountered, stripping the LFN from every other SE's
// list and dropping any SE whose list becomes empty.
func BuildStageRequest(inputData []string, replicaSEs map[models.LFN]map[models.SEName]struct{}, class SEClassification) (models.StageRequest, error) {
	stageLFNs := make(models.StageRequest)
	var lfnToStage []string

	for _, lfn := range inputData {
		replicas, ok := replicaSEs[lfn]
		if !ok {
			continue
		}

		onDisk := false
		for se := range replicas {
			if _, isDisk := class.DiskSEs[se]; isDisk {
				onDisk = true
				break
			}
		}
		if onDisk {
			continue
		}

		var seStage []string
		for se := range replicas {
			if _, isTape := class.TapeSEs[se]; isTape {
				seStage = append(seStage, se)
			}
		}
		if len(seStage) == 0 {
			continue
		}

		for _, se := range seStage {
			stageLFNs[se] = append(stageLFNs[se], lfn)
		}
		lfnToStage = append(lfnToStage, lfn)
	}

	if len(stageLFNs) == 0 {
		return nil, ErrNoTapeReplicas
	}

	minimizeStageRequest(stageLFNs, lfnToStage)
	return stageLFNs, nil
}

func minimizeStageRequest(stageLFNs models.StageRequest, lfnToStage []string) {
	sortedSEs := func() []string {
		names := make([]string, 0, len(stageLFNs))
		for se := range stageLFNs {
			names = append(names, se)
		}
		sort.Slice(names, func(i, j int) bool {
			li, lj := len(stageLFNs[names[i]]), len(stageLFNs[names[j]])
			if li != lj {
				return li > lj
			}
			return names[i] < names[j]
		})
		return names
	}

	for _, lfn := range lfnToStage {
		found := false
		for _, se := range sortedSEs() {
			idx := indexOfLFN(stageLFNs[se], lfn)
			if idx < 0 {
				continue
			}
			if !found {
				found = true
				continue
			}
			stageLFNs[se] = append(stageLFNs[se][:idx], stageLFNs[se][idx+1:]...)
			if len(stageLFNs[se]) == 0 {
				delete(stageLFNs, se)
			}
		}
	}
}

func indexOfLFN(lfns []string, target string) int {
	for i, l := range lfns {
		if l == target {
			return i
		}
	}
	return -1
}
