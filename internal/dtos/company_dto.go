package dtos

import (
	"github.com/justsurfingit/jobly/internal/models"
	"github.com/justsurfingit/jobly/internal/query"
)

type CompanyCreationRequest struct {
	Handle       string  `json:"handle" binding:"required,handle"`
	Name         string  `json:"name" binding:"required,min=1"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees" binding:"omitempty,min=0,max=2147483647"`
	LogoURL      *string `json:"logoUrl" binding:"omitempty,url"`
}

type CompanyUpdateRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1"`
	Description  *string `json:"description"`
	NumEmployees *int    `json:"numEmployees" binding:"omitempty,min=0,max=2147483647"`
	LogoURL      *string `json:"logoUrl" binding:"omitempty,url"`
}

// CompanyColumns maps company request fields onto their storage columns.
var CompanyColumns = query.Columns{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

func (r *CompanyUpdateRequest) Fields() query.Fields {
	var fields query.Fields
	if r.Name != nil {
		fields = append(fields, query.Field{Name: "name", Value: *r.Name})
	}
	if r.Description != nil {
		fields = append(fields, query.Field{Name: "description", Value: *r.Description})
	}
	if r.NumEmployees != nil {
		fields = append(fields, query.Field{Name: "numEmployees", Value: *r.NumEmployees})
	}
	if r.LogoURL != nil {
		fields = append(fields, query.Field{Name: "logoUrl", Value: *r.LogoURL})
	}
	return fields
}

type CompanySearchQuery struct {
	MinEmployees *int    `form:"minEmployees" binding:"omitempty,min=0,max=2147483647"`
	MaxEmployees *int    `form:"maxEmployees" binding:"omitempty,min=0,max=2147483647"`
	NameLike     *string `form:"nameLike"`
}

var CompanySearchKeys = []string{"minEmployees", "maxEmployees", "nameLike"}

func (q *CompanySearchQuery) Filter() models.CompanyFilter {
	return models.CompanyFilter{
		MinEmployees: q.MinEmployees,
		MaxEmployees: q.MaxEmployees,
		NameLike:     q.NameLike,
	}
}
