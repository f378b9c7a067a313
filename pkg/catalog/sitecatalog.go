package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dirac-wms/jobsched/pkg/collab"
	"github.com/dirac-wms/jobsched/pkg/models"
)

// PostgresSiteCatalog implements collab.SiteCatalog, collab.StorageElementStatus
// and collab.SiteTier over the sites/site_ses/storage_elements tables.
type PostgresSiteCatalog struct {
	db *sql.DB
}

// NewPostgresSiteCatalog wraps an open Client.
func NewPostgresSiteCatalog(c *Client) *PostgresSiteCatalog {
	return &PostgresSiteCatalog{db: c.db}
}

func (c *PostgresSiteCatalog) GetSEsForSite(ctx context.Context, site string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT se_name FROM site_ses WHERE site = $1 ORDER BY se_name`, site)
	if err != nil {
		return nil, fmt.Errorf("querying SEs for site %s: %w", site, err)
	}
	defer rows.Close()

	var ses []string
	for rows.Next() {
		var se string
		if err := rows.Scan(&se); err != nil {
			return nil, fmt.Errorf("scanning SE for site %s: %w", site, err)
		}
		ses = append(ses, se)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating SEs for site %s: %w", site, err)
	}
	if len(ses) == 0 {
		return nil, fmt.Errorf("%w: %s", collab.ErrNoSEsForSite, site)
	}
	return ses, nil
}

func (c *PostgresSiteCatalog) GetStatus(ctx context.Context, seName, _ string) (models.StorageEndpoint, error) {
	se := models.StorageEndpoint{Name: seName}
	err := c.db.QueryRowContext(ctx, `
		SELECT read, write, disk_se, tape_se FROM storage_elements WHERE name = $1`, seName,
	).Scan(&se.Read, &se.Write, &se.DiskSE, &se.TapeSE)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StorageEndpoint{}, fmt.Errorf("unknown storage element %s", seName)
	}
	if err != nil {
		return models.StorageEndpoint{}, fmt.Errorf("querying status for SE %s: %w", seName, err)
	}
	return se, nil
}

func (c *PostgresSiteCatalog) GetSiteTier(ctx context.Context, site string) (int, error) {
	var tier int
	err := c.db.QueryRowContext(ctx, `SELECT tier FROM sites WHERE name = $1`, site).Scan(&tier)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("unknown site %s", site)
	}
	if err != nil {
		return 0, fmt.Errorf("querying tier for site %s: %w", site, err)
	}
	return tier, nil
}

// UpsertSite inserts or updates a site's tier, used to seed the catalog.
func (c *PostgresSiteCatalog) UpsertSite(ctx context.Context, site string, tier int) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO sites (name, tier) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET tier = EXCLUDED.tier`, site, tier)
	if err != nil {
		return fmt.Errorf("upserting site %s: %w", site, err)
	}
	return nil
}

// UpsertSE inserts or updates a storage element's capability flags.
func (c *PostgresSiteCatalog) UpsertSE(ctx context.Context, se models.StorageEndpoint) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO storage_elements (name, read, write, disk_se, tape_se) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET read = EXCLUDED.read, write = EXCLUDED.write, disk_se = EXCLUDED.disk_se, tape_se = EXCLUDED.tape_se`,
		se.Name, se.Read, se.Write, se.DiskSE, se.TapeSE)
	if err != nil {
		return fmt.Errorf("upserting storage element %s: %w", se.Name, err)
	}
	return nil
}

// LinkSiteSE associates a storage element with a site.
func (c *PostgresSiteCatalog) LinkSiteSE(ctx context.Context, site, seName string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO site_ses (site, se_name) VALUES ($1, $2)
		ON CONFLICT (site, se_name) DO NOTHING`, site, seName)
	if err != nil {
		return fmt.Errorf("linking SE %s to site %s: %w", seName, site, err)
	}
	return nil
}
