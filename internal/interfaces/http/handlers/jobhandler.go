package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axonect/quotacycle/internal/application/provisioning/dto"
	"github.com/axonect/quotacycle/internal/shared/logger"
	"github.com/axonect/quotacycle/internal/shared/utils"
)

const (
	JobRenewal      = "renewal"
	JobReaper       = "reaper"
	JobNotification = "notification"
)

// JobHandler triggers the batch jobs on demand. Each call runs to completion on the
// request goroutine and reports counts only.
type JobHandler struct {
	renewal      renewalRunner
	reaper       countingJob
	notification countingJob
	logger       logger.Interface
}

func NewJobHandler(renewal renewalRunner, reaper, notification countingJob, logger logger.Interface) *JobHandler {
	return &JobHandler{
		renewal:      renewal,
		reaper:       reaper,
		notification: notification,
		logger:       logger,
	}
}

// RunRenewal handles POST|GET /api/services/recurrent/reactivate
func (h *JobHandler) RunRenewal(c *gin.Context) {
	result, err := h.renewal.Run(c.Request.Context())
	if err != nil {
		h.logger.Errorw("renewal trigger failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "recurring services renewed", result)
}

// RunReaper handles POST|GET /api/delete/expired
func (h *JobHandler) RunReaper(c *gin.Context) {
	h.runCounting(c, JobReaper, h.reaper, "expired buckets deleted")
}

// RunNotifications handles POST|GET /api/notification
func (h *JobHandler) RunNotifications(c *gin.Context) {
	h.runCounting(c, JobNotification, h.notification, "expiry notifications sent")
}

func (h *JobHandler) runCounting(c *gin.Context, name string, job countingJob, message string) {
	n, err := job.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("job trigger failed", "job", name, "count", n, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, dto.JobCountResponse{Job: name, Count: n})
}
