package models

import "encoding/json"

type Company struct {
	Handle       string  `gorm:"column:handle" json:"handle"`
	Name         string  `gorm:"column:name" json:"name"`
	Description  string  `gorm:"column:description" json:"description"`
	NumEmployees *int    `gorm:"column:num_employees" json:"numEmployees"`
	LogoURL      *string `gorm:"column:logo_url" json:"logoUrl"`
}

// MarshalBinary and UnmarshalBinary let a Company be stored in the cache.
func (c Company) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

func (c *Company) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, c)
}

// CompanyDetail is a company together with the jobs it posts.
type CompanyDetail struct {
	Company
	Jobs []JobSummary `json:"jobs"`
}

type Job struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Salary        *int     `json:"salary"`
	Equity        *float64 `json:"equity"`
	CompanyHandle string   `json:"companyHandle"`
}

// JobListing is a job row from the filtered listing, with the owning
// company's display name. CompanyName is nil when the company is gone.
type JobListing struct {
	Job
	CompanyName *string `json:"companyName"`
}

// JobDetail replaces the raw company handle with the full company record.
type JobDetail struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Salary  *int     `json:"salary"`
	Equity  *float64 `json:"equity"`
	Company *Company `json:"company"`
}

type JobSummary struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Salary *int     `json:"salary"`
	Equity *float64 `json:"equity"`
}

// JobFilter holds optional job listing criteria. HasEquity only narrows the
// listing when it is exactly true.
type JobFilter struct {
	MinSalary *int
	HasEquity *bool
	Title     *string
}

type CompanyFilter struct {
	MinEmployees *int
	MaxEmployees *int
	NameLike     *string
}
