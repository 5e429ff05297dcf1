package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobly/catalog-service/internal/catalog"
)

// listJobs handles GET /jobs. Any query parameter switches to the filtered
// search.
func (h *Handler) listJobs(c *gin.Context) {
	query := c.Request.URL.Query()

	var (
		jobs []catalog.Job
		err  error
	)
	if len(query) > 0 {
		var f catalog.JobFilter
		if f, err = catalog.ParseJobFilter(query); err == nil {
			jobs, err = h.jobs.Filter(c.Request.Context(), f)
		}
	} else {
		jobs, err = h.jobs.FindAll(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// jobID parses the :id path parameter.
func jobID(c *gin.Context) (int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		abortWithError(c, badRequest("id must be a 32-bit integer"))
		return 0, false
	}
	return int(id), true
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *Handler) createJob(c *gin.Context) {
	var body catalog.NewJob
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, badRequest("invalid JSON body: "+err.Error()))
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"job": job})
}

func (h *Handler) updateJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	var body catalog.JobUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, badRequest("invalid JSON body: "+err.Error()))
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), id, body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

func (h *Handler) removeJob(c *gin.Context) {
	id, ok := jobID(c)
	if !ok {
		return
	}
	if err := h.jobs.Remove(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": strconv.Itoa(id)})
}
