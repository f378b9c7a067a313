package scheduling

import (
	"strings"

	"github.com/dirac-wms/jobsched/pkg/models"
)

// Requirements is the result of extracting site constraints from a job
// manifest (§4.B).
type Requirements struct {
	Sites       []string
	BannedSites []string
}

// ExtractRequirements reads the Site/BannedSites(BannedSite) manifest
// options. Entries of Site whose case-insensitive trim is "" or "any" are
// dropped (they mean "no constraint", not a literal site named "any").
//
// If the resulting Sites list is non-empty, it must survive the site filter
// against BannedSites or this returns ErrImpossibleSiteRequirement; the
// returned Sites is the unfiltered list regardless — banned-site filtering
// is re-applied at match time by the downstream task queue.
func ExtractRequirements(manifest *models.Manifest) (Requirements, error) {
	banned := manifest.GetOption(models.OptionBannedSites, nil)
	if len(banned) == 0 {
		banned = manifest.GetOption(models.OptionBannedSite, nil)
	}

	raw := manifest.GetOption(models.OptionSite, nil)
	sites := make([]string, 0, len(raw))
	for _, s := range raw {
		trimmed := strings.ToLower(strings.TrimSpace(s))
		if trimmed == "" || trimmed == "any" {
			continue
		}
		sites = append(sites, s)
	}

	if len(sites) > 0 {
		if len(FilterBannedSites(sites, banned)) == 0 {
			return Requirements{}, ErrImpossibleSiteRequirement
		}
	}

	return Requirements{Sites: sites, BannedSites: banned}, nil
}

// WriteJobRequirementsSection records the sites a job was forwarded with
// into the manifest's JobRequirements section, the way the source annotates
// the manifest before task-queue insertion (spec.md §6, "Persisted
// mutations"). Only the Sites/BannedSites options are written; the
// plural-keyed SubmitPool(s)/GridMiddleware/PilotType(s)/JobType(s)/
// GridCE(s)/Tags translation belongs to the task-queue insertion stage,
// out of this core's scope (spec.md §1 non-goals).
func WriteJobRequirementsSection(manifest *models.Manifest, sites, bannedSites []string) {
	section := manifest.CreateSection("JobRequirements")
	section.SetOption("Sites", strings.Join(sites, ", "))
	section.SetOption("BannedSites", strings.Join(bannedSites, ", "))
}
