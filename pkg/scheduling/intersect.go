package scheduling

import (
	hashset "github.com/hashicorp/go-set/v3"

	"github.com/dirac-wms/jobsched/pkg/models"
)

// IntersectSiteCandidates intersects the site candidates produced by the
// input-data optimizer with the job's requested sites, minus its banned
// sites (§4.C). An empty userSites is treated as the universe (no
// constraint); an empty userBannedSites excludes nothing.
func IntersectSiteCandidates(
	siteCandidates map[string]models.SiteReplicaRecord,
	userSites, userBannedSites []string,
) map[string]models.SiteReplicaRecord {
	userSiteSet := hashset.From(userSites)
	bannedSet := hashset.From(userBannedSites)

	out := make(map[string]models.SiteReplicaRecord, len(siteCandidates))
	for site, rec := range siteCandidates {
		if userSiteSet.Size() > 0 && !userSiteSet.Contains(site) {
			continue
		}
		if bannedSet.Contains(site) {
			continue
		}
		out[site] = rec
	}
	return out
}

// FilterCompleteSites drops sites whose replica record does not cover every
// input file (orchestrator step 10: "incomplete-input sites").
func FilterCompleteSites(siteCandidates map[string]models.SiteReplicaRecord, numInputFiles int) map[string]models.SiteReplicaRecord {
	out := make(map[string]models.SiteReplicaRecord, len(siteCandidates))
	for site, rec := range siteCandidates {
		if rec.HasAllInput(numInputFiles) {
			out[site] = rec
		}
	}
	return out
}
