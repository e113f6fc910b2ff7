package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobly/internal/dtos"
	apperrors "github.com/justsurfingit/jobly/internal/errors"
	"github.com/justsurfingit/jobly/internal/models"
	"github.com/justsurfingit/jobly/internal/query"
	"github.com/justsurfingit/jobly/internal/telemetry"
)

const jobColumns = `id, title, salary, equity, company_handle`

type JobService struct {
	DB        *gorm.DB
	Companies *CompanyService
	Logger    *zap.Logger
}

func NewJobService(db *gorm.DB, companies *CompanyService, logger *zap.Logger) *JobService {
	return &JobService{
		DB:        db,
		Companies: companies,
		Logger:    logger,
	}
}

func (r jobRow) toJob() models.Job {
	return models.Job{
		ID:            r.ID,
		Title:         r.Title,
		Salary:        r.Salary,
		Equity:        equityFloat(r.Equity),
		CompanyHandle: r.CompanyHandle,
	}
}

// buildJobsQuery compiles the job listing statement for filter. Every job is
// listed with its company's name, which is NULL when the company is missing.
func buildJobsQuery(filter models.JobFilter) (string, []any) {
	var where query.Where
	if filter.MinSalary != nil {
		where.Compare("j.salary", ">=", *filter.MinSalary)
	}
	if filter.HasEquity != nil && *filter.HasEquity {
		where.Raw("j.equity > 0")
	}
	if filter.Title != nil {
		where.ILike("j.title", *filter.Title)
	}

	sql := `SELECT j.id, j.title, j.salary, j.equity, j.company_handle, c.name AS company_name
		FROM jobs j LEFT JOIN companies AS c ON c.handle = j.company_handle` +
		where.String() + ` ORDER BY j.title`
	return sql, where.Args()
}

func (s *JobService) CreateJob(ctx context.Context, req *dtos.JobCreationRequest) (*models.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.CreateJob")
	defer span.End()
	span.SetAttributes(telemetry.String("company.handle", req.CompanyHandle))

	// the company must exist before the job is inserted
	if _, err := s.Companies.findCompany(ctx, req.CompanyHandle); err != nil {
		recordError(span, err)
		return nil, err
	}

	var row jobRow
	err := s.DB.WithContext(ctx).
		Raw(`INSERT INTO jobs (title, salary, equity, company_handle)
			VALUES ($1, $2, $3, $4)
			RETURNING `+jobColumns,
			req.Title, req.Salary, req.Equity, req.CompanyHandle).
		Scan(&row).Error
	if err != nil {
		recordError(span, err)
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, apperrors.NotFound(fmt.Sprintf("No company: %s", req.CompanyHandle), err)
		}
		return nil, s.storageError("insert job", err)
	}

	job := row.toJob()
	s.Logger.Info("job created", zap.Int("id", job.ID), zap.String("company", job.CompanyHandle))
	return &job, nil
}

func (s *JobService) FindJobs(ctx context.Context, filter models.JobFilter) ([]models.JobListing, error) {
	ctx, span := tracer.Start(ctx, "JobService.FindJobs")
	defer span.End()

	sql, args := buildJobsQuery(filter)
	var rows []jobRow
	if err := s.DB.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		recordError(span, err)
		return nil, s.storageError("list jobs", err)
	}

	jobs := make([]models.JobListing, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, models.JobListing{Job: r.toJob(), CompanyName: r.CompanyName})
	}
	span.SetAttributes(telemetry.Int("jobs.count", len(jobs)))
	return jobs, nil
}

// GetJob returns the job with its owning company attached in place of the handle.
func (s *JobService) GetJob(ctx context.Context, id int) (*models.JobDetail, error) {
	ctx, span := tracer.Start(ctx, "JobService.GetJob")
	defer span.End()
	span.SetAttributes(telemetry.Int("job.id", id))

	var row jobRow
	tx := s.DB.WithContext(ctx).
		Raw(`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id).
		Scan(&row)
	if tx.Error != nil {
		recordError(span, tx.Error)
		return nil, s.storageError("get job", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("No job: %d", id), nil)
	}

	company, err := s.Companies.findCompany(ctx, row.CompanyHandle)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	return &models.JobDetail{
		ID:      row.ID,
		Title:   row.Title,
		Salary:  row.Salary,
		Equity:  equityFloat(row.Equity),
		Company: company,
	}, nil
}

// UpdateJob applies a partial update. The id and company handle cannot be changed.
func (s *JobService) UpdateJob(ctx context.Context, id int, req *dtos.JobUpdateRequest) (*models.Job, error) {
	ctx, span := tracer.Start(ctx, "JobService.UpdateJob")
	defer span.End()
	span.SetAttributes(telemetry.Int("job.id", id))

	u, err := query.PartialUpdate(req.Fields(), nil)
	if err != nil {
		return nil, err
	}

	sql := `UPDATE jobs SET ` + u.SetCols +
		` WHERE id = ` + u.Bind(id) +
		` RETURNING ` + jobColumns

	var row jobRow
	tx := s.DB.WithContext(ctx).Raw(sql, u.Values()...).Scan(&row)
	if tx.Error != nil {
		recordError(span, tx.Error)
		return nil, s.storageError("update job", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("No job: %d", id), nil)
	}

	job := row.toJob()
	return &job, nil
}

func (s *JobService) RemoveJob(ctx context.Context, id int) error {
	ctx, span := tracer.Start(ctx, "JobService.RemoveJob")
	defer span.End()
	span.SetAttributes(telemetry.Int("job.id", id))

	tx := s.DB.WithContext(ctx).Exec(`DELETE FROM jobs WHERE id = $1`, id)
	if tx.Error != nil {
		recordError(span, tx.Error)
		return s.storageError("delete job", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("No job: %d", id), nil)
	}

	s.Logger.Info("job removed", zap.Int("id", id))
	return nil
}

func (s *JobService) storageError(op string, err error) error {
	s.Logger.Error("job storage failure", zap.String("op", op), zap.Error(err))
	return apperrors.Internal(op, err)
}
