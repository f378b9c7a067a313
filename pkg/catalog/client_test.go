package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dirac-wms/jobsched/pkg/catalog"
	"github.com/dirac-wms/jobsched/pkg/config"
	"github.com/dirac-wms/jobsched/pkg/models"
)

func newTestClient(t *testing.T) *catalog.Client {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("jobsched_test"),
		postgres.WithUsername("jobsched"),
		postgres.WithPassword("jobsched"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "jobsched",
		Password:        "jobsched",
		Database:        "jobsched_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: "1h",
	}

	client, err := catalog.NewClient(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// seedSites populates the site catalog fixtures, collecting every write
// failure with go-multierror instead of stopping at the first.
func seedSites(ctx context.Context, c *catalog.PostgresSiteCatalog) error {
	var result *multierror.Error

	sites := []struct {
		name string
		tier int
	}{
		{"LCG.CERN.ch", 0},
		{"LCG.DESY.de", 1},
	}
	for _, s := range sites {
		if err := c.UpsertSite(ctx, s.name, s.tier); err != nil {
			result = multierror.Append(result, err)
		}
	}

	ses := []models.StorageEndpoint{
		{Name: "CERN-DISK", Read: true, Write: true, DiskSE: true},
		{Name: "CERN-TAPE", Read: true, TapeSE: true},
	}
	for _, se := range ses {
		if err := c.UpsertSE(ctx, se); err != nil {
			result = multierror.Append(result, err)
		}
	}

	links := [][2]string{{"LCG.CERN.ch", "CERN-DISK"}, {"LCG.CERN.ch", "CERN-TAPE"}}
	for _, l := range links {
		if err := c.LinkSiteSE(ctx, l[0], l[1]); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func TestClient_HealthAndMigrations(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	health, err := catalog.Health(ctx, client.DB())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestPostgresSiteCatalog_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	sites := catalog.NewPostgresSiteCatalog(client)

	require.NoError(t, seedSites(ctx, sites))

	tier, err := sites.GetSiteTier(ctx, "LCG.CERN.ch")
	require.NoError(t, err)
	assert.Equal(t, 0, tier)

	ses, err := sites.GetSEsForSite(ctx, "LCG.CERN.ch")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"CERN-DISK", "CERN-TAPE"}, ses)

	status, err := sites.GetStatus(ctx, "CERN-DISK", "")
	require.NoError(t, err)
	assert.True(t, status.DiskSE)
	assert.True(t, status.Read)

	_, err = sites.GetSEsForSite(ctx, "UNKNOWN")
	assert.Error(t, err)
}

func TestPostgresJobStore_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := catalog.NewPostgresJobStore(client)

	manifest := models.NewManifest()
	manifest.SetOption(models.OptionSite, "LCG.CERN.ch")

	rec := &models.JobRecord{
		JID:        1001,
		Attributes: map[string]string{models.AttrJobType: "user"},
		Manifest:   manifest,
		InputData:  []string{"L1", "L2"},
	}
	require.NoError(t, store.InsertJob(ctx, rec))

	loaded, err := store.Load(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "user", loaded.Attributes[models.AttrJobType])
	assert.Equal(t, []string{"L1", "L2"}, loaded.InputData)

	require.NoError(t, store.SetAttribute(ctx, 1001, models.AttrSite, "LCG.CERN.ch"))
	require.NoError(t, store.SetStatus(ctx, 1001, "Waiting", "", "", "JobScheduling"))

	loaded, err = store.Load(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "LCG.CERN.ch", loaded.Attributes[models.AttrSite])
	assert.Equal(t, "Waiting", loaded.Status.Major)

	record := &models.OptimizerRecord{
		SiteCandidates: map[string]models.SiteReplicaRecord{"LCG.CERN.ch": {Disk: 2}},
	}
	require.NoError(t, store.StoreOptimizerParam(ctx, 1001, "InputData", record))

	got, err := store.RetrieveOptimizerParam(ctx, 1001, "InputData")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.SiteCandidates["LCG.CERN.ch"].Disk)

	missing, err := store.RetrieveOptimizerParam(ctx, 1001, "NoSuchParam")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.Load(ctx, 9999)
	assert.Error(t, err)
}
