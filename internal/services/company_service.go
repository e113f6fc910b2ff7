package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/justsurfingit/jobly/internal/cache"
	"github.com/justsurfingit/jobly/internal/dtos"
	apperrors "github.com/justsurfingit/jobly/internal/errors"
	"github.com/justsurfingit/jobly/internal/models"
	"github.com/justsurfingit/jobly/internal/query"
	"github.com/justsurfingit/jobly/internal/telemetry"
)

const companyColumns = `handle, name, description, num_employees, logo_url`

type CompanyService struct {
	DB     *gorm.DB
	Cache  cache.Cache
	Logger *zap.Logger
}

func NewCompanyService(db *gorm.DB, c cache.Cache, logger *zap.Logger) *CompanyService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CompanyService{
		DB:     db,
		Cache:  c,
		Logger: logger,
	}
}

func companyCacheKey(handle string) string {
	return "company:" + handle
}

// buildCompaniesQuery compiles the company listing statement for filter.
func buildCompaniesQuery(filter models.CompanyFilter) (string, []any) {
	var where query.Where
	if filter.MinEmployees != nil {
		where.Compare("num_employees", ">=", *filter.MinEmployees)
	}
	if filter.MaxEmployees != nil {
		where.Compare("num_employees", "<=", *filter.MaxEmployees)
	}
	if filter.NameLike != nil {
		where.ILike("name", *filter.NameLike)
	}

	sql := `SELECT ` + companyColumns + ` FROM companies` + where.String() + ` ORDER BY name`
	return sql, where.Args()
}

func (s *CompanyService) CreateCompany(ctx context.Context, req *dtos.CompanyCreationRequest) (*models.Company, error) {
	ctx, span := tracer.Start(ctx, "CompanyService.CreateCompany")
	defer span.End()
	span.SetAttributes(telemetry.String("company.handle", req.Handle))

	var existing []string
	err := s.DB.WithContext(ctx).
		Raw(`SELECT handle FROM companies WHERE handle = $1`, req.Handle).
		Scan(&existing).Error
	if err != nil {
		recordError(span, err)
		return nil, s.storageError("check duplicate company", err)
	}
	if len(existing) > 0 {
		return nil, apperrors.BadRequest(fmt.Sprintf("Duplicate company: %s", req.Handle), nil)
	}

	var company models.Company
	err = s.DB.WithContext(ctx).
		Raw(`INSERT INTO companies (handle, name, description, num_employees, logo_url)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+companyColumns,
			req.Handle, req.Name, req.Description, req.NumEmployees, req.LogoURL).
		Scan(&company).Error
	if err != nil {
		recordError(span, err)
		if pgErrorCode(err) == pgUniqueViolation {
			if pgConstraint(err) == companyNameConstraint {
				return nil, apperrors.BadRequest(fmt.Sprintf("Duplicate company name: %s", req.Name), err)
			}
			return nil, apperrors.BadRequest(fmt.Sprintf("Duplicate company: %s", req.Handle), err)
		}
		return nil, s.storageError("insert company", err)
	}

	s.Logger.Info("company created", zap.String("handle", company.Handle))
	return &company, nil
}

func (s *CompanyService) FindCompanies(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error) {
	ctx, span := tracer.Start(ctx, "CompanyService.FindCompanies")
	defer span.End()

	sql, args := buildCompaniesQuery(filter)
	companies := []models.Company{}
	if err := s.DB.WithContext(ctx).Raw(sql, args...).Scan(&companies).Error; err != nil {
		recordError(span, err)
		return nil, s.storageError("list companies", err)
	}
	span.SetAttributes(telemetry.Int("companies.count", len(companies)))
	return companies, nil
}

// findCompany loads a single company record, consulting the cache first.
func (s *CompanyService) findCompany(ctx context.Context, handle string) (*models.Company, error) {
	var company models.Company
	if err := s.Cache.Get(ctx, companyCacheKey(handle), &company); err == nil {
		return &company, nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.Logger.Warn("company cache read failed", zap.String("handle", handle), zap.Error(err))
	}

	tx := s.DB.WithContext(ctx).
		Raw(`SELECT `+companyColumns+` FROM companies WHERE handle = $1`, handle).
		Scan(&company)
	if tx.Error != nil {
		return nil, s.storageError("get company", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("No company: %s", handle), nil)
	}

	if err := s.Cache.Set(ctx, companyCacheKey(handle), company, 0); err != nil {
		s.Logger.Warn("company cache write failed", zap.String("handle", handle), zap.Error(err))
	}
	return &company, nil
}

// GetCompany returns the company and its jobs ordered by id.
func (s *CompanyService) GetCompany(ctx context.Context, handle string) (*models.CompanyDetail, error) {
	ctx, span := tracer.Start(ctx, "CompanyService.GetCompany")
	defer span.End()
	span.SetAttributes(telemetry.String("company.handle", handle))

	company, err := s.findCompany(ctx, handle)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	var rows []jobRow
	err = s.DB.WithContext(ctx).
		Raw(`SELECT id, title, salary, equity FROM jobs WHERE company_handle = $1 ORDER BY id`, handle).
		Scan(&rows).Error
	if err != nil {
		recordError(span, err)
		return nil, s.storageError("list company jobs", err)
	}

	detail := &models.CompanyDetail{Company: *company, Jobs: make([]models.JobSummary, 0, len(rows))}
	for _, r := range rows {
		detail.Jobs = append(detail.Jobs, models.JobSummary{
			ID:     r.ID,
			Title:  r.Title,
			Salary: r.Salary,
			Equity: equityFloat(r.Equity),
		})
	}
	return detail, nil
}

// UpdateCompany applies a partial update. The handle cannot be changed.
func (s *CompanyService) UpdateCompany(ctx context.Context, handle string, req *dtos.CompanyUpdateRequest) (*models.Company, error) {
	ctx, span := tracer.Start(ctx, "CompanyService.UpdateCompany")
	defer span.End()
	span.SetAttributes(telemetry.String("company.handle", handle))

	u, err := query.PartialUpdate(req.Fields(), dtos.CompanyColumns)
	if err != nil {
		return nil, err
	}

	sql := `UPDATE companies SET ` + u.SetCols +
		` WHERE handle = ` + u.Bind(handle) +
		` RETURNING ` + companyColumns

	var company models.Company
	tx := s.DB.WithContext(ctx).Raw(sql, u.Values()...).Scan(&company)
	if tx.Error != nil {
		recordError(span, tx.Error)
		if pgErrorCode(tx.Error) == pgUniqueViolation && req.Name != nil {
			return nil, apperrors.BadRequest(fmt.Sprintf("Duplicate company name: %s", *req.Name), tx.Error)
		}
		return nil, s.storageError("update company", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, apperrors.NotFound(fmt.Sprintf("No company: %s", handle), nil)
	}

	s.invalidate(ctx, handle)
	return &company, nil
}

// RemoveCompany deletes the company. Its jobs are removed by the ON DELETE CASCADE.
func (s *CompanyService) RemoveCompany(ctx context.Context, handle string) error {
	ctx, span := tracer.Start(ctx, "CompanyService.RemoveCompany")
	defer span.End()
	span.SetAttributes(telemetry.String("company.handle", handle))

	tx := s.DB.WithContext(ctx).Exec(`DELETE FROM companies WHERE handle = $1`, handle)
	if tx.Error != nil {
		recordError(span, tx.Error)
		return s.storageError("delete company", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("No company: %s", handle), nil)
	}

	s.invalidate(ctx, handle)
	s.Logger.Info("company removed", zap.String("handle", handle))
	return nil
}

func (s *CompanyService) invalidate(ctx context.Context, handle string) {
	if err := s.Cache.Delete(ctx, companyCacheKey(handle)); err != nil {
		s.Logger.Warn("company cache invalidation failed", zap.String("handle", handle), zap.Error(err))
	}
}

func (s *CompanyService) storageError(op string, err error) error {
	s.Logger.Error("company storage failure", zap.String("op", op), zap.Error(err))
	return apperrors.Internal(op, err)
}
