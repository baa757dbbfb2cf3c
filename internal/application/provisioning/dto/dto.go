package dto

import "time"

// RenewalRunResult summarizes one pass of the recurring renewal job.
type RenewalRunResult struct {
	BatchID     string        `json:"batch_id"`
	WindowStart time.Time     `json:"window_start"`
	WindowEnd   time.Time     `json:"window_end"`
	Pages       int           `json:"pages"`
	Processed   int           `json:"processed"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration"`
}

// JobCountResponse is what the HTTP and CLI triggers report back.
type JobCountResponse struct {
	Job   string `json:"job"`
	Count int    `json:"count"`
}

type ProcessingFailureDTO struct {
	ID                int64          `json:"id"`
	ServiceInstanceID int64          `json:"service_instance_id"`
	Username          string         `json:"username"`
	PlanID            string         `json:"plan_id"`
	PlanName          string         `json:"plan_name"`
	ErrorType         string         `json:"error_type"`
	ErrorMessage      string         `json:"error_message"`
	StackTrace        string         `json:"stack_trace,omitempty"`
	RetryCount        int            `json:"retry_count"`
	ProcessingStatus  string         `json:"processing_status"`
	FailureDate       time.Time      `json:"failure_date"`
	LastRetryDate     *time.Time     `json:"last_retry_date,omitempty"`
	ResolvedDate      *time.Time     `json:"resolved_date,omitempty"`
	BatchID           string         `json:"batch_id"`
	AdditionalInfo    map[string]any `json:"additional_info,omitempty"`
}

// ListFailuresRequest filters the failure audit; zero values are ignored.
type ListFailuresRequest struct {
	Username          string
	Status            string
	BatchID           string
	ServiceInstanceID int64
	From              *time.Time
	To                *time.Time
	Page              int
	PageSize          int
}

type ListFailuresResponse struct {
	Failures []*ProcessingFailureDTO `json:"failures"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

type UpdateFailureStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=FAILED PENDING_RETRY RESOLVED"`
}

// CacheStatisticsDTO reports one reference cache.
type CacheStatisticsDTO struct {
	Name       string  `json:"name"`
	Size       int64   `json:"size"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRatio   float64 `json:"hit_ratio"`
	TTLSeconds float64 `json:"ttl_seconds"`
}

type CacheEvictionResponse struct {
	Cache   string `json:"cache"`
	Key     string `json:"key,omitempty"`
	Evicted int64  `json:"evicted"`
}
