package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dirac-wms/jobsched/pkg/collab"
	"github.com/dirac-wms/jobsched/pkg/models"
)

// PostgresJobStore implements collab.JobStateStore over the jobs table.
type PostgresJobStore struct {
	db *sql.DB
}

// NewPostgresJobStore wraps an open Client.
func NewPostgresJobStore(c *Client) *PostgresJobStore {
	return &PostgresJobStore{db: c.db}
}

func (s *PostgresJobStore) Load(ctx context.Context, jid int64) (*models.JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT attributes, manifest, input_data, status_major, status_minor, status_app, status_source, created_at, updated_at
		FROM jobs WHERE jid = $1`, jid)

	var attrsRaw, manifestRaw, inputRaw []byte
	rec := &models.JobRecord{JID: jid}
	err := row.Scan(&attrsRaw, &manifestRaw, &inputRaw,
		&rec.Status.Major, &rec.Status.Minor, &rec.Status.ApplicationStatus, &rec.Status.Source,
		&rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, collab.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading job %d: %w", jid, err)
	}

	if err := json.Unmarshal(attrsRaw, &rec.Attributes); err != nil {
		return nil, fmt.Errorf("decoding job %d attributes: %w", jid, err)
	}
	rec.Manifest = models.NewManifest()
	if err := json.Unmarshal(manifestRaw, rec.Manifest); err != nil {
		return nil, fmt.Errorf("decoding job %d manifest: %w", jid, err)
	}
	if err := json.Unmarshal(inputRaw, &rec.InputData); err != nil {
		return nil, fmt.Errorf("decoding job %d input data: %w", jid, err)
	}
	return rec, nil
}

func (s *PostgresJobStore) SetAttribute(ctx context.Context, jid int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET attributes = jsonb_set(attributes, $2::text[], to_jsonb($3::text), true), updated_at = now()
		WHERE jid = $1`, jid, pgTextPathArray(key), value)
	if err != nil {
		return fmt.Errorf("setting attribute %q on job %d: %w", key, jid, err)
	}
	return nil
}

func (s *PostgresJobStore) SetStatus(ctx context.Context, jid int64, major, minor, appStatus, source string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status_major = $2, status_minor = $3,
		    status_app = CASE WHEN $4 <> '' THEN $4 ELSE status_app END,
		    status_source = $5, updated_at = now()
		WHERE jid = $1`, jid, major, minor, appStatus, source)
	if err != nil {
		return fmt.Errorf("setting status on job %d: %w", jid, err)
	}
	return nil
}

func (s *PostgresJobStore) SetAppStatus(ctx context.Context, jid int64, msg, source string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status_app = $2, status_source = $3, updated_at = now()
		WHERE jid = $1`, jid, msg, source)
	if err != nil {
		return fmt.Errorf("setting app status on job %d: %w", jid, err)
	}
	return nil
}

func (s *PostgresJobStore) SetParameter(ctx context.Context, jid int64, key, value string) error {
	return s.SetAttribute(ctx, jid, "param:"+key, value)
}

func (s *PostgresJobStore) SaveManifest(ctx context.Context, jid int64, manifest *models.Manifest) error {
	raw, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest for job %d: %w", jid, err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE jobs SET manifest = $2, updated_at = now() WHERE jid = $1`, jid, raw)
	if err != nil {
		return fmt.Errorf("saving manifest for job %d: %w", jid, err)
	}
	return nil
}

func (s *PostgresJobStore) SiteMaskBanned(ctx context.Context, jid int64) ([]string, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT banned_sites FROM jobs WHERE jid = $1`, jid).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, collab.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading banned sites for job %d: %w", jid, err)
	}
	var banned []string
	if err := json.Unmarshal(raw, &banned); err != nil {
		return nil, fmt.Errorf("decoding banned sites for job %d: %w", jid, err)
	}
	return banned, nil
}

// RetrieveOptimizerParam implements collab.OptimizerParamStore.
func (s *PostgresJobStore) RetrieveOptimizerParam(ctx context.Context, jid int64, name string) (*models.OptimizerRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT record FROM optimizer_params WHERE jid = $1 AND name = $2`, jid, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading optimizer param %q for job %d: %w", name, jid, err)
	}
	var rec models.OptimizerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding optimizer param %q for job %d: %w", name, jid, err)
	}
	return &rec, nil
}

// StoreOptimizerParam implements collab.OptimizerParamStore.
func (s *PostgresJobStore) StoreOptimizerParam(ctx context.Context, jid int64, name string, record *models.OptimizerRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding optimizer param %q for job %d: %w", name, jid, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO optimizer_params (jid, name, record) VALUES ($1, $2, $3)
		ON CONFLICT (jid, name) DO UPDATE SET record = EXCLUDED.record`, jid, name, raw)
	if err != nil {
		return fmt.Errorf("storing optimizer param %q for job %d: %w", name, jid, err)
	}
	return nil
}

// InsertJob seeds a new job row.
func (s *PostgresJobStore) InsertJob(ctx context.Context, rec *models.JobRecord) error {
	attrs, err := json.Marshal(rec.Attributes)
	if err != nil {
		return fmt.Errorf("encoding attributes for job %d: %w", rec.JID, err)
	}
	manifest := rec.Manifest
	if manifest == nil {
		manifest = models.NewManifest()
	}
	manifestRaw, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest for job %d: %w", rec.JID, err)
	}
	inputRaw, err := json.Marshal(rec.InputData)
	if err != nil {
		return fmt.Errorf("encoding input data for job %d: %w", rec.JID, err)
	}
	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (jid, attributes, manifest, input_data, status_major, status_minor, status_app, status_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		rec.JID, attrs, manifestRaw, inputRaw, rec.Status.Major, rec.Status.Minor, rec.Status.ApplicationStatus, rec.Status.Source, now)
	if err != nil {
		return fmt.Errorf("inserting job %d: %w", rec.JID, err)
	}
	return nil
}

// pgTextPathArray renders a single JSON key as a Postgres text[] literal
// suitable for jsonb_set's path argument.
func pgTextPathArray(key string) string {
	return "{" + key + "}"
}
