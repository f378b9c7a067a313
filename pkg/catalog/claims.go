package catalog

import (
	"context"
	"fmt"
	"time"
)

// ClaimJobs atomically claims up to batchSize jobs in "Received" status
// using the FOR UPDATE SKIP LOCKED pattern, transitioning them to
// "Checking" so no other worker can claim the same row. Returns the
// claimed job ids in claim order.
func (s *PostgresJobStore) ClaimJobs(ctx context.Context, workerID string, batchSize int) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT jid FROM jobs
		WHERE status_major = 'Received'
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, batchSize)
	if err != nil {
		return nil, fmt.Errorf("querying claimable jobs: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var jid int64
		if err := rows.Scan(&jid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning claimable job: %w", err)
		}
		ids = append(ids, jid)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating claimable jobs: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, nil
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE jobs SET status_major = 'Checking', claimed_by = $1, claimed_at = $2, updated_at = $2
		WHERE jid = ANY($3::bigint[])`, workerID, now, int64SliceToArray(ids))
	if err != nil {
		return nil, fmt.Errorf("marking jobs claimed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return ids, nil
}

// ReleaseClaim returns a claimed job to "Received" without recording any
// outcome, used when the worker crashes mid-decision or (in the future)
// is told to abandon the job gracefully.
func (s *PostgresJobStore) ReleaseClaim(ctx context.Context, jid int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status_major = 'Received', claimed_by = NULL, claimed_at = NULL, updated_at = now()
		WHERE jid = $1`, jid)
	if err != nil {
		return fmt.Errorf("releasing claim on job %d: %w", jid, err)
	}
	return nil
}

// RequeueForHold returns a job to "Received" after a Hold outcome,
// clearing its claim so the next poll cycle can re-evaluate it once the
// reschedule delay has elapsed (the orchestrator itself compares
// RescheduleTime against the configured delay on the next run).
func (s *PostgresJobStore) RequeueForHold(ctx context.Context, jid int64) error {
	return s.ReleaseClaim(ctx, jid)
}

// StaleClaims returns the ids of jobs claimed more than threshold ago and
// still in "Checking" status — workers that died mid-decision.
func (s *PostgresJobStore) StaleClaims(ctx context.Context, threshold time.Duration) ([]int64, error) {
	cutoff := time.Now().Add(-threshold)
	rows, err := s.db.QueryContext(ctx, `
		SELECT jid FROM jobs WHERE status_major = 'Checking' AND claimed_at < $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying stale claims: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var jid int64
		if err := rows.Scan(&jid); err != nil {
			return nil, fmt.Errorf("scanning stale claim: %w", err)
		}
		ids = append(ids, jid)
	}
	return ids, rows.Err()
}

// int64SliceToArray renders ids as a Postgres bigint[] literal for use
// with the ANY($n) operator.
func int64SliceToArray(ids []int64) string {
	out := "{"
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%d", id)
	}
	return out + "}"
}
