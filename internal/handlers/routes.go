package handlers

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobly/internal/auth"
	"github.com/justsurfingit/jobly/internal/config"
	"github.com/justsurfingit/jobly/internal/dtos"
	"github.com/justsurfingit/jobly/internal/logging"
)

// NewRouter builds the gin engine serving the /api/v1 routes.
func NewRouter(cfg *config.Config, logger *zap.Logger, jobs *JobHandler, companies *CompanyHandler) (*gin.Engine, error) {
	binding.EnableDecoderDisallowUnknownFields = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dtos.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("failed to register validators: %w", err)
		}
	}

	r := gin.New()
	r.Use(logging.Middleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(auth.Authenticate(cfg.SecretKey))

	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		companyRoutes := api.Group("/companies")
		companyRoutes.POST("", auth.EnsureAdmin(), companies.CreateCompany)
		companyRoutes.GET("", companies.FindCompanies)
		companyRoutes.GET("/:handle", companies.GetCompany)
		companyRoutes.PATCH("/:handle", auth.EnsureAdmin(), companies.UpdateCompany)
		companyRoutes.DELETE("/:handle", auth.EnsureAdmin(), companies.RemoveCompany)

		jobRoutes := api.Group("/jobs")
		jobRoutes.POST("", auth.EnsureAdmin(), jobs.CreateJob)
		jobRoutes.GET("", jobs.FindJobs)
		jobRoutes.GET("/:id", jobs.GetJob)
		jobRoutes.PATCH("/:id", auth.EnsureAdmin(), jobs.UpdateJob)
		jobRoutes.DELETE("/:id", auth.EnsureAdmin(), jobs.RemoveJob)
	}

	return r, nil
}
