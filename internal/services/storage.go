package services

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/justsurfingit/jobly/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobly/services")

// Postgres SQLSTATE codes the services translate into domain errors.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// Named constraints from the schema migrations.
const companyNameConstraint = "companies_name_key"

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// equityFloat converts a scanned NUMERIC into the JSON number the API returns.
func equityFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

// jobRow is the flat scan target for job queries.
type jobRow struct {
	ID            int                 `gorm:"column:id"`
	Title         string              `gorm:"column:title"`
	Salary        *int                `gorm:"column:salary"`
	Equity        decimal.NullDecimal `gorm:"column:equity"`
	CompanyHandle string              `gorm:"column:company_handle"`
	CompanyName   *string             `gorm:"column:company_name"`
}
