package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axonect/quotacycle/internal/application/provisioning/dto"
	"github.com/axonect/quotacycle/internal/shared/biztime"
	"github.com/axonect/quotacycle/internal/shared/errors"
	"github.com/axonect/quotacycle/internal/shared/logger"
	"github.com/axonect/quotacycle/internal/shared/utils"
)

type FailureHandler struct {
	list      failureLister
	retryable retryableFailureLister
	update    failureStatusUpdater
	logger    logger.Interface
}

func NewFailureHandler(list failureLister, retryable retryableFailureLister, update failureStatusUpdater, logger logger.Interface) *FailureHandler {
	return &FailureHandler{
		list:      list,
		retryable: retryable,
		update:    update,
		logger:    logger,
	}
}

// ListFailures handles GET /api/failures
func (h *FailureHandler) ListFailures(c *gin.Context) {
	pagination := utils.ParsePagination(c)
	req := dto.ListFailuresRequest{
		Username: c.Query("username"),
		Status:   c.Query("status"),
		BatchID:  c.Query("batch_id"),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}

	if raw := c.Query("service_instance_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid service_instance_id", raw))
			return
		}
		req.ServiceInstanceID = id
	}

	var err error
	if req.From, err = parseTimeQuery(c, "from"); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if req.To, err = parseTimeQuery(c, "to"); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.list.Execute(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, resp.Failures, resp.Total, resp.Page, resp.PageSize)
}

// ListRetryable handles GET /api/failures/retryable
func (h *FailureHandler) ListRetryable(c *gin.Context) {
	maxRetries := 0
	if raw := c.Query("max_retries"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError("max_retries must be a positive integer", raw))
			return
		}
		maxRetries = n
	}

	failures, err := h.retryable.Execute(c.Request.Context(), maxRetries)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", failures)
}

// UpdateStatus handles PATCH /api/failures/:id/status
func (h *FailureHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid failure id", c.Param("id")))
		return
	}

	var req dto.UpdateFailureStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for failure status update", "id", id, "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.update.Execute(c.Request.Context(), id, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "failure status updated", result)
}

// parseTimeQuery accepts RFC 3339 timestamps or yyyy-MM-dd business dates.
func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := biztime.ParseDate(raw)
	if err != nil {
		return nil, errors.NewBadRequestError("invalid "+key, raw)
	}
	return &t, nil
}
