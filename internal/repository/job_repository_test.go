package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/job-application-tracker/internal/model"
)

func jobColumns() []string {
	return []string{"id", "user_id", "company", "title", "status", "date_applied", "next_follow_up", "notes", "tags", "created_at", "updated_at"}
}

func jobRow(rows *sqlmock.Rows, id, userID string, now time.Time) *sqlmock.Rows {
	return rows.AddRow(id, userID, "Acme", "Engineer", "applied", nil, nil, nil, []byte(`["remote"]`), now, now)
}

func newJobMock(t *testing.T) (*JobRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewJobRepo(db), mock, func() { db.Close() }
}

func TestJobRepoListByUser(t *testing.T) {
	repo, mock, closeDB := newJobMock(t)
	defer closeDB()
	now := time.Now()

	rows := sqlmock.NewRows(jobColumns())
	jobRow(rows, "j-2", "u-1", now)
	jobRow(rows, "j-1", "u-1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,user_id,company,title,status,date_applied,next_follow_up,notes,tags,created_at,updated_at FROM jobs WHERE user_id=? ORDER BY created_at DESC, id DESC")).
		WithArgs("u-1").
		WillReturnRows(rows)

	jobs, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs; want 2", len(jobs))
	}
	if jobs[0].ID != "j-2" {
		t.Errorf("first job = %q; want j-2", jobs[0].ID)
	}
	if len(jobs[0].Tags) != 1 || jobs[0].Tags[0] != "remote" {
		t.Errorf("tags = %v", jobs[0].Tags)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestJobRepoListByUser_Empty(t *testing.T) {
	repo, mock, closeDB := newJobMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE user_id=?")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(jobColumns()))

	jobs, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if jobs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(jobs) != 0 {
		t.Errorf("got %d jobs; want 0", len(jobs))
	}
}

func TestJobRepoCreate(t *testing.T) {
	repo, mock, closeDB := newJobMock(t)
	defer closeDB()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs (id, user_id, company, title, status, date_applied, next_follow_up, notes, tags) VALUES (?,?,?,?,?,?,?,?,?)")).
		WithArgs(sqlmock.AnyArg(), "u-1", "Acme", "Engineer", "applied", nil, nil, nil, []byte(`["remote"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id=? AND user_id=? LIMIT 1")).
		WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnRows(jobRow(sqlmock.NewRows(jobColumns()), "j-1", "u-1", now))

	in := model.JobInput{Company: "Acme", Title: "Engineer", Status: "applied", Tags: []string{"remote"}}
	job, err := repo.Create(context.Background(), "u-1", in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if job.UserID != "u-1" {
		t.Errorf("user id = %q", job.UserID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestJobRepoUpdate_NotOwned(t *testing.T) {
	repo, mock, closeDB := newJobMock(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET company=?, title=?, status=?, date_applied=?, next_follow_up=?, notes=?, tags=? WHERE id=? AND user_id=?")).
		WithArgs("Acme", "Engineer", "applied", nil, nil, nil, []byte(`[]`), "j-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	in := model.JobInput{Company: "Acme", Title: "Engineer", Status: "applied", Tags: []string{}}
	_, err := repo.Update(context.Background(), "intruder", "j-1", in)
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("err = %v; want ErrJobNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestJobRepoUpdateStatus(t *testing.T) {
	repo, mock, closeDB := newJobMock(t)
	defer closeDB()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status=? WHERE id=? AND user_id=?")).
		WithArgs(model.StatusOffer, "j-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id=? AND user_id=? LIMIT 1")).
		WithArgs("j-1", "u-1").
		WillReturnRows(sqlmock.NewRows(jobColumns()).
			AddRow("j-1", "u-1", "Acme", "Engineer", "offer", nil, nil, nil, []byte(`[]`), now, now))

	job, err := repo.UpdateStatus(context.Background(), "u-1", "j-1", model.StatusOffer)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if job.Status != model.StatusOffer {
		t.Errorf("status = %q; want offer", job.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestJobRepoDelete(t *testing.T) {
	repo, mock, closeDB := newJobMock(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id=? AND user_id=?")).
		WithArgs("j-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Delete(context.Background(), "u-1", "j-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id=? AND user_id=?")).
		WithArgs("j-1", "someone-else").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), "someone-else", "j-1"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("err = %v; want ErrJobNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
