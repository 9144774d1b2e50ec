// Package repository contains data access logic for job records.  Every
// read, update and delete filters by (id, user_id) in a single statement so
// the ownership check is atomic with the operation itself; there is no
// separate read-then-write window.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/iliyamo/job-application-tracker/internal/model"
)

// JobRepo manages persistence for the jobs table.
type JobRepo struct{ DB *sql.DB }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{DB: db} }

const jobCols = "id,user_id,company,title,status,date_applied,next_follow_up,notes,tags,created_at,updated_at"

// ListByUser returns every job owned by userID, newest-created-first.  The
// id tiebreak keeps the order deterministic for rows created in the same
// second.
func (r *JobRepo) ListByUser(ctx context.Context, userID string) ([]model.Job, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+jobCols+" FROM jobs WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// Create inserts a job with a server-assigned uuid, attaches the owning
// user and returns the stored row with its DB-managed timestamps.  The
// input must already be validated and normalized.
func (r *JobRepo) Create(ctx context.Context, userID string, in model.JobInput) (model.Job, error) {
	id := uuid.NewString()
	tags, err := json.Marshal(in.Tags)
	if err != nil {
		return model.Job{}, err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO jobs (id, user_id, company, title, status, date_applied, next_follow_up, notes, tags) VALUES (?,?,?,?,?,?,?,?,?)",
		id, userID, in.Company, in.Title, in.Status, in.DateApplied, in.NextFollowUp, in.Notes, tags)
	if err != nil {
		return model.Job{}, err
	}
	return r.getByIDAndUser(ctx, id, userID)
}

// Update replaces every client-managed field of the job matching
// (jobID, userID).  Returns ErrJobNotFound when no such row exists for this
// user, including when the job belongs to someone else.
func (r *JobRepo) Update(ctx context.Context, userID, jobID string, in model.JobInput) (model.Job, error) {
	tags, err := json.Marshal(in.Tags)
	if err != nil {
		return model.Job{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE jobs SET company=?, title=?, status=?, date_applied=?, next_follow_up=?, notes=?, tags=? WHERE id=? AND user_id=?",
		in.Company, in.Title, in.Status, in.DateApplied, in.NextFollowUp, in.Notes, tags, jobID, userID)
	if err != nil {
		return model.Job{}, err
	}
	if err := requireMatch(res); err != nil {
		return model.Job{}, err
	}
	return r.getByIDAndUser(ctx, jobID, userID)
}

// UpdateStatus changes only the status of the job matching (jobID, userID).
// Ownership semantics are identical to Update.
func (r *JobRepo) UpdateStatus(ctx context.Context, userID, jobID string, status model.JobStatus) (model.Job, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE jobs SET status=? WHERE id=? AND user_id=?",
		status, jobID, userID)
	if err != nil {
		return model.Job{}, err
	}
	if err := requireMatch(res); err != nil {
		return model.Job{}, err
	}
	return r.getByIDAndUser(ctx, jobID, userID)
}

// Delete permanently removes the job matching (jobID, userID).  There is no
// soft delete.
func (r *JobRepo) Delete(ctx context.Context, userID, jobID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM jobs WHERE id=? AND user_id=?", jobID, userID)
	if err != nil {
		return err
	}
	return requireMatch(res)
}

func (r *JobRepo) getByIDAndUser(ctx context.Context, id, userID string) (model.Job, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+jobCols+" FROM jobs WHERE id=? AND user_id=? LIMIT 1", id, userID)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return model.Job{}, ErrJobNotFound
	}
	return j, err
}

// requireMatch maps a zero matched-row count to ErrJobNotFound.  The DSN
// sets clientFoundRows so RowsAffected reports matched rows, not changed
// rows; an update that leaves values untouched still counts.
func requireMatch(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanJob(row rowScanner) (model.Job, error) {
	var j model.Job
	var dateApplied, nextFollowUp sql.NullTime
	var notes sql.NullString
	var tags []byte
	err := row.Scan(&j.ID, &j.UserID, &j.Company, &j.Title, &j.Status,
		&dateApplied, &nextFollowUp, &notes, &tags, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return model.Job{}, err
	}
	if dateApplied.Valid {
		j.DateApplied = &dateApplied.Time
	}
	if nextFollowUp.Valid {
		j.NextFollowUp = &nextFollowUp.Time
	}
	if notes.Valid {
		j.Notes = &notes.String
	}
	j.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &j.Tags); err != nil {
			return model.Job{}, err
		}
	}
	return j, nil
}
