package scheduling

import hashset "github.com/hashicorp/go-set/v3"

// FilterBannedSites returns sites with every entry of banned removed
// (§4.A — Site Filter). If banned is empty, sites is returned unchanged.
// This implementation preserves the relative order of sites; only
// membership testing is delegated to hashset.Set.
func FilterBannedSites(sites, banned []string) []string {
	if len(banned) == 0 {
		return sites
	}

	bannedSet := hashset.From(banned)
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		if !bannedSet.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}
