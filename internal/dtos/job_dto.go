package dtos

import (
	"github.com/justsurfingit/jobly/internal/models"
	"github.com/justsurfingit/jobly/internal/query"
)

type JobCreationRequest struct {
	Title         string   `json:"title" binding:"required,min=1"`
	Salary        *int     `json:"salary" binding:"omitempty,min=0,max=2147483647"`
	Equity        *float64 `json:"equity" binding:"omitempty,min=0,max=1"`
	CompanyHandle string   `json:"companyHandle" binding:"required,handle"`
}

// JobUpdateRequest is the only shape a job PATCH may take. The id and the
// company handle are immutable.
type JobUpdateRequest struct {
	Title  *string  `json:"title" binding:"omitempty,min=1"`
	Salary *int     `json:"salary" binding:"omitempty,min=0,max=2147483647"`
	Equity *float64 `json:"equity" binding:"omitempty,min=0,max=1"`
}

// Fields lists the supplied fields in declaration order.
func (r *JobUpdateRequest) Fields() query.Fields {
	var fields query.Fields
	if r.Title != nil {
		fields = append(fields, query.Field{Name: "title", Value: *r.Title})
	}
	if r.Salary != nil {
		fields = append(fields, query.Field{Name: "salary", Value: *r.Salary})
	}
	if r.Equity != nil {
		fields = append(fields, query.Field{Name: "equity", Value: *r.Equity})
	}
	return fields
}

// JobSearchQuery is bound from the GET /jobs query string.
type JobSearchQuery struct {
	MinSalary *int    `form:"minSalary" binding:"omitempty,min=0,max=2147483647"`
	HasEquity string  `form:"hasEquity"`
	Title     *string `form:"title"`
}

var JobSearchKeys = []string{"minSalary", "hasEquity", "title"}

// Filter coerces the query string into typed criteria. hasEquity is true
// only for the literal "true"; anything else leaves it unset.
func (q *JobSearchQuery) Filter() models.JobFilter {
	filter := models.JobFilter{
		MinSalary: q.MinSalary,
		Title:     q.Title,
	}
	if q.HasEquity == "true" {
		hasEquity := true
		filter.HasEquity = &hasEquity
	}
	return filter
}
