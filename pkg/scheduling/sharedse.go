package scheduling

import "github.com/dirac-wms/jobsched/pkg/models"

// SiteSEView is a sibling site's resolved storage-endpoint set, as needed
// by UpdateSharedSEs: all of that site's SEs (CloseSEs) and those of them
// that are disk-readable (DiskSEs). A site whose SE set could not be
// resolved has no view at all; the orchestrator skips it per §4.G.
type SiteSEView struct {
	CloseSEs map[string]struct{}
	DiskSEs  map[string]struct{}
}

// UpdateSharedSEs promotes, for every sibling site present in siteViews,
// replicas of staged LFNs from tape to disk when that sibling shares one of
// the staged SEs and does not already have a disk replica there (§4.G).
// siteCandidates is mutated in place; the orchestrator is responsible for
// persisting it afterward.
func UpdateSharedSEs(
	siteCandidates map[string]models.SiteReplicaRecord,
	stageSite string,
	stagedLFNs models.StageRequest,
	replicaSEs map[models.LFN]map[models.SEName]struct{},
	siteViews map[string]SiteSEView,
) {
	for siteName, view := range siteViews {
		if siteName == stageSite {
			continue
		}
		rec, tracked := siteCandidates[siteName]
		if !tracked {
			continue
		}

		for se, lfns := range stagedLFNs {
			if _, atSite := view.CloseSEs[se]; !atSite {
				continue
			}
			for _, lfn := range lfns {
				replicas, ok := replicaSEs[lfn]
				if !ok {
					continue
				}
				alreadyOnDisk := false
				for replicaSE := range replicas {
					if _, isDisk := view.DiskSEs[replicaSE]; isDisk {
						alreadyOnDisk = true
						break
					}
				}
				if alreadyOnDisk {
					continue
				}
				rec.Disk++
				rec.Tape--
			}
		}

		siteCandidates[siteName] = rec
	}
}
