package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-application-tracker/internal/model"
	"github.com/iliyamo/job-application-tracker/internal/queue"
	"github.com/iliyamo/job-application-tracker/internal/repository"
)

// ActivityPublisher emits job activity events to the message broker.
// Publishing is best-effort: failures never interrupt the request flow.
type ActivityPublisher interface {
	PublishJobActivity(ctx context.Context, event queue.JobActivityEvent) error
}

// JobHandler bundles dependencies for job endpoints.  Events may be nil
// when no broker is configured.
type JobHandler struct {
	Jobs   *repository.JobRepo
	Events ActivityPublisher
}

func NewJobHandler(jobs *repository.JobRepo, events ActivityPublisher) *JobHandler {
	return &JobHandler{Jobs: jobs, Events: events}
}

// List handles GET /api/jobs and returns the caller's jobs newest first.
func (h *JobHandler) List(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	jobs, err := h.Jobs.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"jobs": jobs})
}

// Create handles POST /api/jobs.
func (h *JobHandler) Create(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	var in model.JobInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if verrs := in.Validate(); len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "details": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	job, err := h.Jobs.Create(ctx, uid, in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create job"})
	}
	h.publishActivity(ctx, "created", job)
	return c.JSON(http.StatusCreated, echo.Map{"job": job})
}

// Update handles PUT /api/jobs/:id and replaces every client-managed field.
func (h *JobHandler) Update(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	var in model.JobInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if verrs := in.Validate(); len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "details": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	job, err := h.Jobs.Update(ctx, uid, c.Param("id"), in)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update job"})
	}
	return c.JSON(http.StatusOK, echo.Map{"job": job})
}

// UpdateStatus handles PATCH /api/jobs/:id/status and changes only the
// pipeline stage.
func (h *JobHandler) UpdateStatus(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	status := model.JobStatus(body.Status)
	if !status.Valid() {
		verrs := model.ValidationErrors{}.Add("status", "status must be one of applied, phone-screen, interview, offer, rejected, wishlist")
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed", "details": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	job, err := h.Jobs.UpdateStatus(ctx, uid, c.Param("id"), status)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update job"})
	}
	h.publishActivity(ctx, "status-changed", job)
	return c.JSON(http.StatusOK, echo.Map{"job": job})
}

// Delete handles DELETE /api/jobs/:id.  Deletion is permanent.
func (h *JobHandler) Delete(c echo.Context) error {
	uid := currentUserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Jobs.Delete(ctx, uid, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete job"})
	}
	return c.NoContent(http.StatusNoContent)
}

// publishActivity emits a broker event for the mutation, ignoring failures.
func (h *JobHandler) publishActivity(ctx context.Context, action string, job model.Job) {
	if h.Events == nil {
		return
	}
	_ = h.Events.PublishJobActivity(ctx, queue.JobActivityEvent{
		JobID:      job.ID,
		UserID:     job.UserID,
		Company:    job.Company,
		Title:      job.Title,
		Status:     string(job.Status),
		Action:     action,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}
