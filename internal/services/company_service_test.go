package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/justsurfingit/jobly/internal/cache"
	"github.com/justsurfingit/jobly/internal/dtos"
	apperrors "github.com/justsurfingit/jobly/internal/errors"
	"github.com/justsurfingit/jobly/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func ptr[T any](v T) *T { return &v }

var companyRowColumns = []string{"handle", "name", "description", "num_employees", "logo_url"}

// memoryCache is a map-backed cache.Cache for exercising read-through behavior.
type memoryCache struct {
	items map[string]models.Company
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]models.Company{}}
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.items[key] = value.(models.Company)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, value interface{}) error {
	c, ok := m.items[key]
	if !ok {
		return cache.ErrNotFound
	}
	*value.(*models.Company) = c
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	delete(m.items, key)
	return nil
}

func (m *memoryCache) Close() error { return nil }

func TestBuildCompaniesQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    models.CompanyFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:     "no criteria",
			filter:   models.CompanyFilter{},
			wantArgs: []any{},
		},
		{
			name:      "all criteria",
			filter:    models.CompanyFilter{MinEmployees: ptr(10), MaxEmployees: ptr(500), NameLike: ptr("net")},
			wantWhere: " WHERE num_employees >= $1 AND num_employees <= $2 AND name ILIKE $3",
			wantArgs:  []any{10, 500, "%net%"},
		},
		{
			name:      "max only",
			filter:    models.CompanyFilter{MaxEmployees: ptr(3)},
			wantWhere: " WHERE num_employees <= $1",
			wantArgs:  []any{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildCompaniesQuery(tt.filter)
			assert.Equal(t, "SELECT "+companyColumns+" FROM companies"+tt.wantWhere+" ORDER BY name", sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestCompanyService_CreateCompany(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
		WithArgs("new").
		WillReturnRows(sqlmock.NewRows([]string{"handle"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO companies`)).
		WithArgs("new", "New", "New Description", int64(1), "http://new.img").
		WillReturnRows(sqlmock.NewRows(companyRowColumns).
			AddRow("new", "New", "New Description", int64(1), "http://new.img"))

	company, err := svc.CreateCompany(context.Background(), &dtos.CompanyCreationRequest{
		Handle:       "new",
		Name:         "New",
		Description:  "New Description",
		NumEmployees: ptr(1),
		LogoURL:      ptr("http://new.img"),
	})
	require.NoError(t, err)
	assert.Equal(t, &models.Company{
		Handle:       "new",
		Name:         "New",
		Description:  "New Description",
		NumEmployees: ptr(1),
		LogoURL:      ptr("http://new.img"),
	}, company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_CreateCompanyDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"handle"}).AddRow("c1"))

	_, err := svc.CreateCompany(context.Background(), &dtos.CompanyCreationRequest{Handle: "c1", Name: "C1"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeBadRequest))
	assert.Equal(t, "Duplicate company: c1", apperrors.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_CreateCompanyUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
		WithArgs("c9").
		WillReturnRows(sqlmock.NewRows([]string{"handle"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO companies`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.CreateCompany(context.Background(), &dtos.CompanyCreationRequest{Handle: "c9", Name: "C1"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeBadRequest))
	assert.Equal(t, "Duplicate company: c9", apperrors.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_CreateCompanyDuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT handle FROM companies WHERE handle = $1`)).
		WithArgs("c9").
		WillReturnRows(sqlmock.NewRows([]string{"handle"}))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO companies`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "companies_name_key"})

	_, err := svc.CreateCompany(context.Background(), &dtos.CompanyCreationRequest{Handle: "c9", Name: "C1"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeBadRequest))
	assert.Equal(t, "Duplicate company name: C1", apperrors.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_UpdateCompanyDuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE companies SET "name" = $1 WHERE handle = $2`)).
		WithArgs("C2", "c1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "companies_name_key"})

	_, err := svc.UpdateCompany(context.Background(), "c1", &dtos.CompanyUpdateRequest{Name: ptr("C2")})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeBadRequest))
	assert.Equal(t, "Duplicate company name: C2", apperrors.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_FindCompanies(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE name ILIKE $1 ORDER BY name`)).
		WithArgs("%c%").
		WillReturnRows(sqlmock.NewRows(companyRowColumns).
			AddRow("c1", "C1", "Desc1", int64(1), "http://c1.img").
			AddRow("c2", "C2", "Desc2", int64(2), nil))

	companies, err := svc.FindCompanies(context.Background(), models.CompanyFilter{NameLike: ptr("c")})
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "c1", companies[0].Handle)
	assert.Nil(t, companies[1].LogoURL)
	assert.Equal(t, 2, *companies[1].NumEmployees)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_FindCompaniesEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies ORDER BY name`)).
		WillReturnRows(sqlmock.NewRows(companyRowColumns))

	companies, err := svc.FindCompanies(context.Background(), models.CompanyFilter{})
	require.NoError(t, err)
	assert.NotNil(t, companies)
	assert.Empty(t, companies)
}

func TestCompanyService_GetCompany(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(companyRowColumns).
			AddRow("c1", "C1", "Desc1", int64(1), "http://c1.img"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE company_handle = $1 ORDER BY id`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "salary", "equity"}).
			AddRow(int64(1), "j1", int64(123456), "0.123").
			AddRow(int64(4), "j4", nil, nil))

	detail, err := svc.GetCompany(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "C1", detail.Name)
	require.Len(t, detail.Jobs, 2)
	assert.Equal(t, models.JobSummary{ID: 1, Title: "j1", Salary: ptr(123456), Equity: ptr(0.123)}, detail.Jobs[0])
	assert.Equal(t, models.JobSummary{ID: 4, Title: "j4"}, detail.Jobs[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_GetCompanyNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE handle = $1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(companyRowColumns))

	_, err := svc.GetCompany(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
	assert.Equal(t, "No company: nope", apperrors.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_GetCompanyUsesCache(t *testing.T) {
	db, mock := newMockDB(t)
	mc := newMemoryCache()
	svc := NewCompanyService(db, mc, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(companyRowColumns).
			AddRow("c1", "C1", "Desc1", int64(1), nil))
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE company_handle = $1`)).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "salary", "equity"}))
	}

	_, err := svc.GetCompany(context.Background(), "c1")
	require.NoError(t, err)
	assert.Contains(t, mc.items, "company:c1")

	// second read is served from the cache; only the jobs query runs
	detail, err := svc.GetCompany(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "C1", detail.Name)
	assert.Empty(t, detail.Jobs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_UpdateCompany(t *testing.T) {
	db, mock := newMockDB(t)
	mc := newMemoryCache()
	mc.items["company:c1"] = models.Company{Handle: "c1", Name: "stale"}
	svc := NewCompanyService(db, mc, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE companies SET "name" = $1, "num_employees" = $2 WHERE handle = $3 RETURNING`)).
		WithArgs("New", int64(10), "c1").
		WillReturnRows(sqlmock.NewRows(companyRowColumns).
			AddRow("c1", "New", "Desc1", int64(10), nil))

	company, err := svc.UpdateCompany(context.Background(), "c1", &dtos.CompanyUpdateRequest{
		Name:         ptr("New"),
		NumEmployees: ptr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", company.Name)
	assert.Equal(t, 10, *company.NumEmployees)
	assert.NotContains(t, mc.items, "company:c1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_UpdateCompanyNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE companies SET "name" = $1 WHERE handle = $2`)).
		WithArgs("New", "nope").
		WillReturnRows(sqlmock.NewRows(companyRowColumns))

	_, err := svc.UpdateCompany(context.Background(), "nope", &dtos.CompanyUpdateRequest{Name: ptr("New")})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_UpdateCompanyNoData(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	_, err := svc.UpdateCompany(context.Background(), "c1", &dtos.CompanyUpdateRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeBadRequest))
	assert.Equal(t, "No data", apperrors.Message(err, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_RemoveCompany(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM companies WHERE handle = $1`)).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, svc.RemoveCompany(context.Background(), "c1"))

	err := svc.RemoveCompany(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_StorageFailureIsInternal(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCompanyService(db, nil, zap.NewNop())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM companies`)).
		WillReturnError(assert.AnError)

	_, err := svc.FindCompanies(context.Background(), models.CompanyFilter{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeInternal, apperrors.TypeOf(err))
	assert.ErrorIs(t, err, assert.AnError)
}
