package scheduling

import "strings"

// SiteAny is the attribute value used when no site candidates remain.
const SiteAny = "ANY"

// SiteMultiple is the attribute value used when candidates span more than
// one site at the minimum tier.
const SiteMultiple = "Multiple"

// TierResolver resolves a site's tier; used by SummarizeSiteAssignment.
// Implementations should skip (return an error for) sites whose tier
// cannot be determined, mirroring the source's "errors skip the site".
type TierResolver func(site string) (int, error)

// SummarizeSiteAssignment reduces the final candidate site list to the
// value the core stores in the job's Site attribute (§4.H):
//
//   - no candidates            -> "ANY"
//   - exactly one candidate    -> that site, verbatim
//   - otherwise                -> "Group.<suffix>" when exactly one site
//     occupies the minimum tier (after the T0->T1 legacy normalization),
//     else "Multiple"
func SummarizeSiteAssignment(sites []string, tier TierResolver) string {
	switch len(sites) {
	case 0:
		return SiteAny
	case 1:
		return sites[0]
	}

	type tiered struct {
		site string
		tier int
	}
	var resolved []tiered
	for _, s := range sites {
		t, err := tier(s)
		if err != nil {
			continue
		}
		// Legacy hack: a site reported as tier 0 is folded into tier 1, so
		// a job whose candidates mix T0 and T1 sites still reads as a
		// genuine multi-tier spread ("Multiple"), not a single-site group.
		if t == 0 {
			t = 1
		}
		resolved = append(resolved, tiered{site: s, tier: t})
	}

	if len(resolved) == 0 {
		return SiteMultiple
	}

	minTier := resolved[0].tier
	for _, r := range resolved[1:] {
		if r.tier < minTier {
			minTier = r.tier
		}
	}

	var atMinTier []string
	for _, r := range resolved {
		if r.tier == minTier {
			atMinTier = append(atMinTier, r.site)
		}
	}

	if len(atMinTier) == 1 {
		return "Group." + stripLeadingDottedToken(atMinTier[0])
	}
	return SiteMultiple
}

// stripLeadingDottedToken drops the first dot-delimited component of a
// site name, e.g. "LCG.CERN.ch" -> "CERN.ch".
func stripLeadingDottedToken(site string) string {
	if idx := strings.Index(site, "."); idx >= 0 {
		return site[idx+1:]
	}
	return site
}
