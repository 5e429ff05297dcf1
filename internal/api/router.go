// Package api implements the HTTP surface of the catalog service.
//
// Routes:
//
//	GET    /health
//	GET    /me                  (logged in)
//	GET    /companies[?name&minEmployees&maxEmployees]
//	GET    /companies/:handle
//	POST   /companies           (admin)
//	PATCH  /companies/:handle   (admin)
//	DELETE /companies/:handle   (admin)
//	GET    /jobs[?title&minSalary&hasEquity]
//	GET    /jobs/:id
//	POST   /jobs                (admin)
//	PATCH  /jobs/:id            (admin)
//	DELETE /jobs/:id            (admin)
package api

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"jobly/catalog-service/internal/auth"
	"jobly/catalog-service/internal/catalog"
)

// CompanyService is implemented by *catalog.CompanyStore.
type CompanyService interface {
	Create(ctx context.Context, in catalog.NewCompany) (*catalog.Company, error)
	FindAll(ctx context.Context) ([]catalog.Company, error)
	Filter(ctx context.Context, f catalog.CompanyFilter) ([]catalog.Company, error)
	Get(ctx context.Context, handle string) (*catalog.CompanyDetail, error)
	Update(ctx context.Context, handle string, in catalog.CompanyUpdate) (*catalog.Company, error)
	Remove(ctx context.Context, handle string) error
}

// JobService is implemented by *catalog.JobStore.
type JobService interface {
	Create(ctx context.Context, in catalog.NewJob) (*catalog.Job, error)
	FindAll(ctx context.Context) ([]catalog.Job, error)
	Filter(ctx context.Context, f catalog.JobFilter) ([]catalog.Job, error)
	Get(ctx context.Context, id int) (*catalog.Job, error)
	Update(ctx context.Context, id int, in catalog.JobUpdate) (*catalog.Job, error)
	Remove(ctx context.Context, id int) error
}

// Verifier checks bearer tokens. Implemented by *auth.Keys.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// HealthChecker reports database reachability for /health. May be nil.
type HealthChecker interface {
	Healthy() (ok bool, detail string)
}

// Deps holds everything the router needs.
type Deps struct {
	Companies CompanyService
	Jobs      JobService
	Verifier  Verifier
	Health    HealthChecker
	Version   string
}

// Request bodies are closed shapes: unknown fields are a 400.
func init() {
	binding.EnableDecoderDisallowUnknownFields = true
}

// Handler holds shared dependencies.
type Handler struct {
	companies CompanyService
	jobs      JobService
	health    HealthChecker
	version   string
}

// NewRouter builds the gin engine with middleware and all routes mounted.
func NewRouter(d Deps) *gin.Engine {
	h := &Handler{companies: d.Companies, jobs: d.Jobs, health: d.Health, version: d.Version}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	r.Use(Authenticate(d.Verifier))

	r.GET("/health", h.healthCheck)
	r.GET("/me", RequireLogin(), h.whoAmI)

	companies := r.Group("/companies")
	{
		companies.GET("", h.listCompanies)
		companies.GET("/:handle", h.getCompany)
		companies.POST("", RequireAdmin(), h.createCompany)
		companies.PATCH("/:handle", RequireAdmin(), h.updateCompany)
		companies.DELETE("/:handle", RequireAdmin(), h.removeCompany)
	}

	jobs := r.Group("/jobs")
	{
		jobs.GET("", h.listJobs)
		jobs.GET("/:id", h.getJob)
		jobs.POST("", RequireAdmin(), h.createJob)
		jobs.PATCH("/:id", RequireAdmin(), h.updateJob)
		jobs.DELETE("/:id", RequireAdmin(), h.removeJob)
	}

	r.NoRoute(func(c *gin.Context) {
		abortWithError(c, &notFoundRoute{path: c.Request.URL.Path})
	})

	return r
}
