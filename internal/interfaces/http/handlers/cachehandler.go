package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/axonect/quotacycle/internal/shared/logger"
	"github.com/axonect/quotacycle/internal/shared/utils"
)

// CacheHandler serves the cache management API under /cache.
type CacheHandler struct {
	caches cacheManager
	logger logger.Interface
}

func NewCacheHandler(caches cacheManager, logger logger.Interface) *CacheHandler {
	return &CacheHandler{caches: caches, logger: logger}
}

func (h *CacheHandler) Names(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.caches.Names())
}

func (h *CacheHandler) Statistics(c *gin.Context) {
	stats, err := h.caches.Statistics(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", stats)
}

func (h *CacheHandler) Size(c *gin.Context) {
	name := c.Param("name")
	n, err := h.caches.Size(c.Request.Context(), name)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"cache": name, "size": n})
}

func (h *CacheHandler) Keys(c *gin.Context) {
	keys, err := h.caches.Keys(c.Request.Context(), c.Param("name"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", keys)
}

func (h *CacheHandler) Contains(c *gin.Context) {
	name, key := c.Param("name"), c.Param("key")
	ok, err := h.caches.Contains(c.Request.Context(), name, key)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"cache": name, "key": key, "contains": ok})
}

func (h *CacheHandler) EvictKey(c *gin.Context) {
	resp, err := h.caches.EvictKey(c.Request.Context(), c.Param("name"), c.Param("key"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "cache entry evicted", resp)
}

func (h *CacheHandler) Clear(c *gin.Context) {
	resp, err := h.caches.Clear(c.Request.Context(), c.Param("name"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "cache cleared", resp)
}

func (h *CacheHandler) ClearAll(c *gin.Context) {
	resp, err := h.caches.ClearAll(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "all caches cleared", resp)
}

func (h *CacheHandler) EvictPlan(c *gin.Context) {
	resp, err := h.caches.EvictPlan(c.Request.Context(), c.Param("planId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan evicted", resp)
}

func (h *CacheHandler) EvictUser(c *gin.Context) {
	resp, err := h.caches.EvictUser(c.Request.Context(), c.Param("userName"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "session evicted", resp)
}

func (h *CacheHandler) EvictBucket(c *gin.Context) {
	resp, err := h.caches.EvictBucket(c.Request.Context(), c.Param("bucketId"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "bucket evicted", resp)
}
