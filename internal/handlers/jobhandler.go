package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/jobly/internal/dtos"
	apperrors "github.com/justsurfingit/jobly/internal/errors"
	"github.com/justsurfingit/jobly/internal/models"
)

// JobStore is the data access the job routes need.
type JobStore interface {
	CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error)
	FindJobs(ctx context.Context, filter models.JobFilter) ([]models.JobListing, error)
	GetJob(ctx context.Context, id int) (*models.JobDetail, error)
	UpdateJob(ctx context.Context, id int, req *dtos.JobUpdateRequest) (*models.Job, error)
	RemoveJob(ctx context.Context, id int) error
}

type JobHandler struct {
	Jobs JobStore
}

func NewJobHandler(jobs JobStore) *JobHandler {
	return &JobHandler{Jobs: jobs}
}

// jobID parses the :id param. Job ids are Postgres INTEGERs, so a number
// outside the int32 range names a job that cannot exist.
func jobID(c *gin.Context) (int, error) {
	param := c.Param("id")
	id, err := strconv.ParseInt(param, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, apperrors.NotFound("No job: "+param, err)
	}
	if err != nil {
		return 0, apperrors.BadRequest("Invalid job id: "+param, err)
	}
	return int(id), nil
}

// CreateJob is POST /jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req dtos.JobCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.Jobs.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

// FindJobs is GET /jobs, optionally filtered by minSalary, hasEquity and title.
func (h *JobHandler) FindJobs(c *gin.Context) {
	if err := checkQueryKeys(c, dtos.JobSearchKeys); err != nil {
		respondError(c, err)
		return
	}

	var q dtos.JobSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	jobs, err := h.Jobs.FindJobs(c.Request.Context(), q.Filter())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := jobID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	job, err := h.Jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	id, err := jobID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req dtos.JobUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	job, err := h.Jobs.UpdateJob(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *JobHandler) RemoveJob(c *gin.Context) {
	id, err := jobID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Jobs.RemoveJob(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
