package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/job-application-tracker/internal/middleware"
	"github.com/iliyamo/job-application-tracker/internal/queue"
	"github.com/iliyamo/job-application-tracker/internal/repository"
)

// recordingPublisher captures activity events instead of talking to a broker.
type recordingPublisher struct {
	events []queue.JobActivityEvent
}

func (p *recordingPublisher) PublishJobActivity(_ context.Context, ev queue.JobActivityEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func newJobTest(t *testing.T) (*JobHandler, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	pub := &recordingPublisher{}
	return NewJobHandler(repository.NewJobRepo(db), pub), mock, pub
}

func jobTestRow(id, userID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "company", "title", "status", "date_applied", "next_follow_up", "notes", "tags", "created_at", "updated_at"}).
		AddRow(id, userID, "Acme", "Engineer", status, nil, nil, nil, []byte(`[]`), now, now)
}

func jobContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID string) echo.Context {
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.UserIDKey, userID)
	}
	return c
}

func TestJobList(t *testing.T) {
	h, mock, _ := newJobTest(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE user_id=?")).
		WithArgs("u-1").
		WillReturnRows(jobTestRow("j-1", "u-1", "applied"))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, httptest.NewRequest(http.MethodGet, "/api/jobs", nil), rec, "u-1")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Jobs []struct {
			ID     string `json:"id"`
			UserID string `json:"userId"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, "j-1", resp.Jobs[0].ID)
	assert.Equal(t, "u-1", resp.Jobs[0].UserID)
}

func TestJobList_EmptyArrayNotNull(t *testing.T) {
	h, mock, _ := newJobTest(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE user_id=?")).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "company", "title", "status", "date_applied", "next_follow_up", "notes", "tags", "created_at", "updated_at"}))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, httptest.NewRequest(http.MethodGet, "/api/jobs", nil), rec, "u-1")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"jobs":[]}`, rec.Body.String())
}

func TestJobList_Unauthorized(t *testing.T) {
	h, _, _ := newJobTest(t)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, httptest.NewRequest(http.MethodGet, "/api/jobs", nil), rec, "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
}

func TestJobCreate(t *testing.T) {
	h, mock, pub := newJobTest(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs")).
		WithArgs(sqlmock.AnyArg(), "u-1", "Acme", "Engineer", "applied", nil, nil, nil, []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id=? AND user_id=?")).
		WithArgs(sqlmock.AnyArg(), "u-1").
		WillReturnRows(jobTestRow("j-1", "u-1", "applied"))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, jsonRequest(http.MethodPost, "/api/jobs",
		`{"company":"Acme","title":"Engineer"}`), rec, "u-1")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "created", pub.events[0].Action)
	assert.Equal(t, "j-1", pub.events[0].JobID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCreate_ValidationFailed(t *testing.T) {
	h, _, pub := newJobTest(t)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, jsonRequest(http.MethodPost, "/api/jobs",
		`{"status":"ghosted"}`), rec, "u-1")
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Len(t, resp.Details, 3)
	assert.Empty(t, pub.events)
}

func TestJobUpdate_NotFound(t *testing.T) {
	h, mock, _ := newJobTest(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET company=?")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPut, "/api/jobs/j-404", `{"company":"Acme","title":"Engineer"}`)
	c := jobContext(e, req, rec, "u-1")
	c.SetParamNames("id")
	c.SetParamValues("j-404")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Job not found"}`, rec.Body.String())
}

func TestJobUpdateStatus(t *testing.T) {
	h, mock, pub := newJobTest(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status=? WHERE id=? AND user_id=?")).
		WithArgs("offer", "j-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id=? AND user_id=?")).
		WithArgs("j-1", "u-1").
		WillReturnRows(jobTestRow("j-1", "u-1", "offer"))

	e := echo.New()
	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPatch, "/api/jobs/j-1/status", `{"status":"offer"}`)
	c := jobContext(e, req, rec, "u-1")
	c.SetParamNames("id")
	c.SetParamValues("j-1")
	require.NoError(t, h.UpdateStatus(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "status-changed", pub.events[0].Action)
	assert.Equal(t, "offer", pub.events[0].Status)
}

func TestJobUpdateStatus_InvalidStatus(t *testing.T) {
	h, _, _ := newJobTest(t)

	e := echo.New()
	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPatch, "/api/jobs/j-1/status", `{"status":"ghosted"}`)
	c := jobContext(e, req, rec, "u-1")
	c.SetParamNames("id")
	c.SetParamValues("j-1")
	require.NoError(t, h.UpdateStatus(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
}

func TestJobDelete(t *testing.T) {
	h, mock, _ := newJobTest(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id=? AND user_id=?")).
		WithArgs("j-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, httptest.NewRequest(http.MethodDelete, "/api/jobs/j-1", nil), rec, "u-1")
	c.SetParamNames("id")
	c.SetParamValues("j-1")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJobDelete_NotOwned(t *testing.T) {
	h, mock, _ := newJobTest(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM jobs WHERE id=? AND user_id=?")).
		WithArgs("j-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, httptest.NewRequest(http.MethodDelete, "/api/jobs/j-1", nil), rec, "intruder")
	c.SetParamNames("id")
	c.SetParamValues("j-1")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Job not found"}`, rec.Body.String())
}

func TestJobCreate_NilPublisher(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewJobHandler(repository.NewJobRepo(db), nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM jobs WHERE id=? AND user_id=?")).
		WillReturnRows(jobTestRow("j-1", "u-1", "applied"))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := jobContext(e, jsonRequest(http.MethodPost, "/api/jobs",
		`{"company":"Acme","title":"Engineer"}`), rec, "u-1")
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
