package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/application/provisioning/dto"
	"github.com/axonect/quotacycle/internal/interfaces/http/handlers/testutil"
	apperrors "github.com/axonect/quotacycle/internal/shared/errors"
)

type stubRenewal struct {
	result *dto.RenewalRunResult
	err    error
}

func (s *stubRenewal) Run(ctx context.Context) (*dto.RenewalRunResult, error) {
	return s.result, s.err
}

type stubCountingJob struct {
	count int
	err   error
	calls int
}

func (s *stubCountingJob) Execute(ctx context.Context) (int, error) {
	s.calls++
	return s.count, s.err
}

func TestJobHandler_RunRenewal(t *testing.T) {
	renewal := &stubRenewal{result: &dto.RenewalRunResult{BatchID: "b-1", Processed: 4, Succeeded: 3, Failed: 1, Pages: 1}}
	h := NewJobHandler(renewal, &stubCountingJob{}, &stubCountingJob{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/services/recurrent/reactivate", nil)
	h.RunRenewal(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var result dto.RenewalRunResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "b-1", result.BatchID)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
}

func TestJobHandler_RunRenewalStoreError(t *testing.T) {
	renewal := &stubRenewal{err: errors.New("dial tcp: connection refused")}
	h := NewJobHandler(renewal, &stubCountingJob{}, &stubCountingJob{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/services/recurrent/reactivate", nil)
	h.RunRenewal(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "connection refused")
}

func TestJobHandler_CountingJobs(t *testing.T) {
	tests := []struct {
		name   string
		job    string
		count  int
		err    error
		status int
	}{
		{name: "reaper", job: JobReaper, count: 12, status: http.StatusOK},
		{name: "notification", job: JobNotification, count: 5, status: http.StatusOK},
		{name: "reaper failure", job: JobReaper, count: 2, err: apperrors.NewInternalError("failed to delete buckets"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reaper := &stubCountingJob{count: tt.count, err: tt.err}
			notify := &stubCountingJob{count: tt.count, err: tt.err}
			h := NewJobHandler(&stubRenewal{}, reaper, notify, testutil.NewMockLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/", nil)
			if tt.job == JobReaper {
				h.RunReaper(c)
				assert.Equal(t, 1, reaper.calls)
				assert.Zero(t, notify.calls)
			} else {
				h.RunNotifications(c)
				assert.Equal(t, 1, notify.calls)
			}

			require.Equal(t, tt.status, w.Code)
			if tt.err != nil {
				return
			}
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			var body dto.JobCountResponse
			require.NoError(t, json.Unmarshal(resp.Data, &body))
			assert.Equal(t, tt.job, body.Job)
			assert.Equal(t, tt.count, body.Count)
		})
	}
}
