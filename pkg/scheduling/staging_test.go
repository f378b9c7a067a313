package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dirac-wms/jobsched/pkg/models"
	"github.com/dirac-wms/jobsched/pkg/scheduling"
)

// reverseShuffler is a deterministic stand-in for a random source: it
// reverses the slice instead of shuffling it, so tests can assert on exact
// ordering without depending on a seed.
type reverseShuffler struct{}

func (reverseShuffler) Shuffle(n int, swap func(i, j int)) {
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

func TestResolveStaging(t *testing.T) {
	t.Run("a site with the complete disk set wins outright", func(t *testing.T) {
		sites := map[string]models.SiteReplicaRecord{
			"CERN": {Disk: 2, Tape: 0},
			"DESY": {Disk: 1, Tape: 1},
		}
		d := scheduling.ResolveStaging(nil, 2, sites)
		assert.False(t, d.StageRequired)
		assert.Equal(t, []string{"CERN"}, d.CandidateSites)
	})

	t.Run("no complete site requires staging from the best disk count", func(t *testing.T) {
		sites := map[string]models.SiteReplicaRecord{
			"CERN": {Disk: 0, Tape: 2},
			"DESY": {Disk: 1, Tape: 1},
			"RAL":  {Disk: 1, Tape: 1},
		}
		d := scheduling.ResolveStaging(reverseShuffler{}, 2, sites)
		assert.True(t, d.StageRequired)
		assert.ElementsMatch(t, []string{"DESY", "RAL"}, d.CandidateSites)
	})

	t.Run("single best site needs no shuffle", func(t *testing.T) {
		sites := map[string]models.SiteReplicaRecord{
			"CERN": {Disk: 0, Tape: 2},
			"DESY": {Disk: 1, Tape: 1},
		}
		d := scheduling.ResolveStaging(reverseShuffler{}, 2, sites)
		assert.True(t, d.StageRequired)
		assert.Equal(t, []string{"DESY"}, d.CandidateSites)
	})

	t.Run("multiple complete disk sites are all returned", func(t *testing.T) {
		sites := map[string]models.SiteReplicaRecord{
			"CERN": {Disk: 2, Tape: 0},
			"DESY": {Disk: 2, Tape: 0},
		}
		d := scheduling.ResolveStaging(nil, 2, sites)
		assert.False(t, d.StageRequired)
		assert.ElementsMatch(t, []string{"CERN", "DESY"}, d.CandidateSites)
	})
}
