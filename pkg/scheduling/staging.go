package scheduling

import (
	"sort"

	"github.com/dirac-wms/jobsched/pkg/models"
)

// Shuffler is the minimal randomness surface the Staging Resolver needs.
// *math/rand/v2.Rand satisfies this; tests inject a deterministic source
// (spec.md §9 — "expose a seedable RNG in the component's construction
// parameters").
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// StagingDecision is the result of the Staging Resolver (§4.D).
type StagingDecision struct {
	StageRequired  bool
	CandidateSites []string
}

// ResolveStaging decides whether staging is required and which sites are
// candidates to stage from. Sites with a complete on-disk replica set win
// outright (no staging needed); otherwise the sites with the maximum disk
// replica count are returned, uniformly shuffled when there is more than
// one tied best site.
func ResolveStaging(rng Shuffler, numInputFiles int, idSites map[string]models.SiteReplicaRecord) StagingDecision {
	sites := make([]string, 0, len(idSites))
	for s := range idSites {
		sites = append(sites, s)
	}
	sort.Strings(sites)

	var diskSites []string
	var bestSites []string
	maxDisk := -1

	for _, s := range sites {
		rec := idSites[s]
		if rec.Disk == numInputFiles {
			diskSites = append(diskSites, s)
		}
		switch {
		case rec.Disk > maxDisk:
			maxDisk = rec.Disk
			bestSites = []string{s}
		case rec.Disk == maxDisk:
			bestSites = append(bestSites, s)
		}
	}

	if len(diskSites) > 0 {
		return StagingDecision{StageRequired: false, CandidateSites: diskSites}
	}

	shuffled := append([]string(nil), bestSites...)
	if len(shuffled) > 1 && rng != nil {
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
	}
	return StagingDecision{StageRequired: true, CandidateSites: shuffled}
}
