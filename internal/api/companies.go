package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobly/catalog-service/internal/catalog"
)

// listCompanies handles GET /companies. Any query parameter switches to the
// filtered search.
func (h *Handler) listCompanies(c *gin.Context) {
	query := c.Request.URL.Query()

	var (
		companies []catalog.Company
		err       error
	)
	if len(query) > 0 {
		var f catalog.CompanyFilter
		if f, err = catalog.ParseCompanyFilter(query); err == nil {
			companies, err = h.companies.Filter(c.Request.Context(), f)
		}
	} else {
		companies, err = h.companies.FindAll(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

func (h *Handler) getCompany(c *gin.Context) {
	company, err := h.companies.Get(c.Request.Context(), c.Param("handle"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (h *Handler) createCompany(c *gin.Context) {
	var body catalog.NewCompany
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, badRequest("invalid JSON body: "+err.Error()))
		return
	}

	company, err := h.companies.Create(c.Request.Context(), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

func (h *Handler) updateCompany(c *gin.Context) {
	var body catalog.CompanyUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, badRequest("invalid JSON body: "+err.Error()))
		return
	}

	company, err := h.companies.Update(c.Request.Context(), c.Param("handle"), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

func (h *Handler) removeCompany(c *gin.Context) {
	handle := c.Param("handle")
	if err := h.companies.Remove(c.Request.Context(), handle); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": handle})
}
