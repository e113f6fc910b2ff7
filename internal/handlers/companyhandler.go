package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/jobly/internal/dtos"
	apperrors "github.com/justsurfingit/jobly/internal/errors"
	"github.com/justsurfingit/jobly/internal/models"
)

type CompanyStore interface {
	CreateCompany(ctx context.Context, req *dtos.CompanyCreationRequest) (*models.Company, error)
	FindCompanies(ctx context.Context, filter models.CompanyFilter) ([]models.Company, error)
	GetCompany(ctx context.Context, handle string) (*models.CompanyDetail, error)
	UpdateCompany(ctx context.Context, handle string, req *dtos.CompanyUpdateRequest) (*models.Company, error)
	RemoveCompany(ctx context.Context, handle string) error
}

type CompanyHandler struct {
	Companies CompanyStore
}

func NewCompanyHandler(companies CompanyStore) *CompanyHandler {
	return &CompanyHandler{Companies: companies}
}

func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req dtos.CompanyCreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	company, err := h.Companies.CreateCompany(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// FindCompanies is GET /companies, optionally filtered by minEmployees,
// maxEmployees and nameLike.
func (h *CompanyHandler) FindCompanies(c *gin.Context) {
	if err := checkQueryKeys(c, dtos.CompanySearchKeys); err != nil {
		respondError(c, err)
		return
	}

	var q dtos.CompanySearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	if q.MinEmployees != nil && q.MaxEmployees != nil && *q.MinEmployees > *q.MaxEmployees {
		respondError(c, apperrors.BadRequest("Min employees cannot be greater than max", nil))
		return
	}

	companies, err := h.Companies.FindCompanies(c.Request.Context(), q.Filter())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.Companies.GetCompany(c.Request.Context(), c.Param("handle"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	var req dtos.CompanyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	company, err := h.Companies.UpdateCompany(c.Request.Context(), c.Param("handle"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (h *CompanyHandler) RemoveCompany(c *gin.Context) {
	handle := c.Param("handle")
	if err := h.Companies.RemoveCompany(c.Request.Context(), handle); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": handle})
}
