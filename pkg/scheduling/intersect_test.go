package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dirac-wms/jobsched/pkg/models"
	"github.com/dirac-wms/jobsched/pkg/scheduling"
)

func TestIntersectSiteCandidates(t *testing.T) {
	candidates := map[string]models.SiteReplicaRecord{
		"CERN": {Disk: 1},
		"DESY": {Disk: 1},
		"RAL":  {Disk: 1},
	}

	t.Run("no user sites is the universe", func(t *testing.T) {
		got := scheduling.IntersectSiteCandidates(candidates, nil, nil)
		assert.Len(t, got, 3)
	})

	t.Run("user sites restrict the result", func(t *testing.T) {
		got := scheduling.IntersectSiteCandidates(candidates, []string{"CERN", "DESY"}, nil)
		assert.ElementsMatch(t, []string{"CERN", "DESY"}, keysOf(got))
	})

	t.Run("banned sites are removed even when requested", func(t *testing.T) {
		got := scheduling.IntersectSiteCandidates(candidates, []string{"CERN", "DESY"}, []string{"DESY"})
		assert.ElementsMatch(t, []string{"CERN"}, keysOf(got))
	})

	t.Run("banned site not in universe is a no-op", func(t *testing.T) {
		got := scheduling.IntersectSiteCandidates(candidates, nil, []string{"NOWHERE"})
		assert.Len(t, got, 3)
	})
}

func TestFilterCompleteSites(t *testing.T) {
	candidates := map[string]models.SiteReplicaRecord{
		"CERN": {Disk: 2, Tape: 0},
		"DESY": {Disk: 1, Tape: 0},
		"RAL":  {Disk: 0, Tape: 2},
	}

	got := scheduling.FilterCompleteSites(candidates, 2)
	assert.ElementsMatch(t, []string{"CERN", "RAL"}, keysOf(got))
}

func keysOf(m map[string]models.SiteReplicaRecord) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
