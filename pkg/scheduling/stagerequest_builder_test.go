package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirac-wms/jobsched/pkg/models"
	"github.com/dirac-wms/jobsched/pkg/scheduling"
)

func TestClassifySEs(t *testing.T) {
	endpoints := []models.StorageEndpoint{
		{Name: "SE_disk", Read: true, DiskSE: true},
		{Name: "SE_tape", Read: true, TapeSE: true},
		{Name: "SE_both", Read: true, DiskSE: true, TapeSE: true},
		{Name: "SE_noread", Read: false, TapeSE: true},
	}

	c := scheduling.ClassifySEs(endpoints)
	assert.Contains(t, c.DiskSEs, "SE_disk")
	assert.Contains(t, c.DiskSEs, "SE_both")
	assert.Contains(t, c.TapeSEs, "SE_tape")
	assert.Contains(t, c.TapeSEs, "SE_both")
	assert.NotContains(t, c.TapeSEs, "SE_noread")
	assert.NotContains(t, c.DiskSEs, "SE_noread")
}

func TestBuildStageRequest(t *testing.T) {
	t.Run("LFN with a disk replica is skipped entirely", func(t *testing.T) {
		class := scheduling.SEClassification{
			TapeSEs: map[string]struct{}{"T1": {}},
			DiskSEs: map[string]struct{}{"D1": {}},
		}
		replicas := map[models.LFN]map[models.SEName]struct{}{
			"A": {"T1": {}, "D1": {}},
		}
		_, err := scheduling.BuildStageRequest([]string{"A"}, replicas, class)
		assert.ErrorIs(t, err, scheduling.ErrNoTapeReplicas)
	})

	t.Run("single tape replica stages directly", func(t *testing.T) {
		class := scheduling.SEClassification{
			TapeSEs: map[string]struct{}{"T1": {}},
			DiskSEs: map[string]struct{}{},
		}
		replicas := map[models.LFN]map[models.SEName]struct{}{
			"A": {"T1": {}},
		}
		req, err := scheduling.BuildStageRequest([]string{"A"}, replicas, class)
		require.NoError(t, err)
		assert.Equal(t, models.StageRequest{"T1": {"A"}}, req)
	})

	// S6: LFNs A, B, C; tape SEs T1, T2; A replicated on both, B only on T1,
	// C only on T2. The expected minimal assignment is T1:[A,B], T2:[C] —
	// every LFN ends up in exactly one SE's list, and no SE is left with an
	// empty list.
	t.Run("S6 minimizes to one SE per LFN", func(t *testing.T) {
		class := scheduling.SEClassification{
			TapeSEs: map[string]struct{}{"T1": {}, "T2": {}},
			DiskSEs: map[string]struct{}{},
		}
		replicas := map[models.LFN]map[models.SEName]struct{}{
			"A": {"T1": {}, "T2": {}},
			"B": {"T1": {}},
			"C": {"T2": {}},
		}
		req, err := scheduling.BuildStageRequest([]string{"A", "B", "C"}, replicas, class)
		require.NoError(t, err)
		require.Len(t, req, 2)
		assert.ElementsMatch(t, []string{"A", "B"}, req["T1"])
		assert.ElementsMatch(t, []string{"C"}, req["T2"])

		total := 0
		for _, lfns := range req {
			total += len(lfns)
		}
		assert.Equal(t, 3, total, "every LFN must appear in exactly one SE's list")
	})

	t.Run("LFN with no tape replica at this site is skipped", func(t *testing.T) {
		class := scheduling.SEClassification{
			TapeSEs: map[string]struct{}{"T1": {}},
			DiskSEs: map[string]struct{}{},
		}
		replicas := map[models.LFN]map[models.SEName]struct{}{
			"A": {"T1": {}},
			"B": {"SE_elsewhere": {}},
		}
		req, err := scheduling.BuildStageRequest([]string{"A", "B"}, replicas, class)
		require.NoError(t, err)
		assert.Equal(t, models.StageRequest{"T1": {"A"}}, req)
	})

	t.Run("no replicas at all for any input LFN fails", func(t *testing.T) {
		class := scheduling.SEClassification{
			TapeSEs: map[string]struct{}{"T1": {}},
			DiskSEs: map[string]struct{}{},
		}
		_, err := scheduling.BuildStageRequest([]string{"A"}, map[models.LFN]map[models.SEName]struct{}{}, class)
		assert.ErrorIs(t, err, scheduling.ErrNoTapeReplicas)
	})
}
