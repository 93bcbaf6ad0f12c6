package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicstack/civic-triage/internal/batch"
	"github.com/civicstack/civic-triage/internal/config"
	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/trends"
)

type fakeAnalysis struct {
	result models.AnalysisResult
	err    error
}

func (f *fakeAnalysis) Analyze(_ context.Context, _ models.AnalysisRequest) (models.AnalysisResult, error) {
	if f.err != nil {
		return models.AnalysisResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeAnalysis) LatencyP95() time.Duration { return 0 }

type fakeBatch struct {
	jobs      map[string]models.BatchJob
	lastOwner string
}

func (f *fakeBatch) Submit(_ context.Context, ownerID string, messages []string, _ map[string]string) (models.BatchJob, error) {
	if len(messages) == 0 {
		return models.BatchJob{}, errors.New("batch has no messages")
	}
	f.lastOwner = ownerID
	job := models.BatchJob{
		JobID:     "batch_test_1",
		OwnerID:   ownerID,
		Status:    models.JobStatusPending,
		Total:     len(messages),
		CreatedAt: time.Now().UTC(),
	}
	if f.jobs == nil {
		f.jobs = make(map[string]models.BatchJob)
	}
	f.jobs[job.JobID] = job
	return job, nil
}

func (f *fakeBatch) Status(_ context.Context, jobID string) (models.BatchJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return models.BatchJob{}, batch.ErrJobNotFound
	}
	return job, nil
}

func newTestServer(analysis AnalysisAPI, jobs BatchAPI) *Server {
	cfg := config.ServerConfig{Address: ":0", GracefulTimeout: time.Second}
	return NewServer(cfg, nil, analysis, jobs, trends.NewSeriesGenerator(42, nil), nil)
}

func doJSON(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeAnalysis{}, &fakeBatch{})

	rec := doJSON(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleHealthStoreDown(t *testing.T) {
	cfg := config.ServerConfig{Address: ":0", GracefulTimeout: time.Second}
	check := func(context.Context) error { return errors.New("store unreachable") }
	s := NewServer(cfg, nil, &fakeAnalysis{}, &fakeBatch{}, trends.NewSeriesGenerator(42, nil), check)

	rec := doJSON(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "store", body["failed_check"])
}

func TestHandleAnalyze(t *testing.T) {
	analysis := &fakeAnalysis{result: models.AnalysisResult{
		Sentiment:    models.SentimentNegative,
		Category:     "Public Safety",
		Priority:     models.PriorityHigh,
		UrgencyScore: 9.5,
	}}
	s := newTestServer(analysis, &fakeBatch{})

	rec := doJSON(s, http.MethodPost, "/api/v1/analyze", `{"text":"fire on elm street"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.SentimentNegative, result.Sentiment)
	assert.Equal(t, "Public Safety", result.Category)
	assert.Equal(t, models.PriorityHigh, result.Priority)
}

func TestHandleAnalyzeEmptyText(t *testing.T) {
	s := newTestServer(&fakeAnalysis{err: models.ErrEmptyText}, &fakeBatch{})

	rec := doJSON(s, http.MethodPost, "/api/v1/analyze", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeInternalError(t *testing.T) {
	s := newTestServer(&fakeAnalysis{err: errors.New("pipeline exploded")}, &fakeBatch{})

	rec := doJSON(s, http.MethodPost, "/api/v1/analyze", `{"text":"anything"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleAnalyzeMalformedBody(t *testing.T) {
	s := newTestServer(&fakeAnalysis{}, &fakeBatch{})

	rec := doJSON(s, http.MethodPost, "/api/v1/analyze", `{"text": not-json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBatchSubmit(t *testing.T) {
	jobs := &fakeBatch{}
	s := newTestServer(&fakeAnalysis{}, jobs)

	rec := doJSON(s, http.MethodPost, "/api/v1/batch/process",
		`{"messages":["a","b"],"owner_id":"dept-42"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "batch_test_1", body["job_id"])
	assert.Equal(t, "dept-42", jobs.lastOwner)
	assert.Contains(t, body, "progress_percentage")
}

func TestHandleBatchSubmitOwnerHeaderFallback(t *testing.T) {
	jobs := &fakeBatch{}
	s := newTestServer(&fakeAnalysis{}, jobs)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batch/process",
		strings.NewReader(`{"messages":["a"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Owner-ID", "clerk-7")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "clerk-7", jobs.lastOwner)
}

func TestHandleBatchSubmitEmpty(t *testing.T) {
	s := newTestServer(&fakeAnalysis{}, &fakeBatch{})

	rec := doJSON(s, http.MethodPost, "/api/v1/batch/process", `{"messages":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBatchStatus(t *testing.T) {
	jobs := &fakeBatch{jobs: map[string]models.BatchJob{
		"batch_test_1": {
			JobID:     "batch_test_1",
			Status:    models.JobStatusProcessing,
			Total:     4,
			Processed: 1,
		},
	}}
	s := newTestServer(&fakeAnalysis{}, jobs)

	rec := doJSON(s, http.MethodGet, "/api/v1/batch/jobs/batch_test_1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "processing", body["status"])
	assert.InDelta(t, 25.0, body["progress_percentage"], 0.001)
}

func TestHandleBatchStatusUnknownJob(t *testing.T) {
	s := newTestServer(&fakeAnalysis{}, &fakeBatch{})

	rec := doJSON(s, http.MethodGet, "/api/v1/batch/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBatchSummaryStillProcessing(t *testing.T) {
	jobs := &fakeBatch{jobs: map[string]models.BatchJob{
		"batch_test_1": {JobID: "batch_test_1", Status: models.JobStatusProcessing},
	}}
	s := newTestServer(&fakeAnalysis{}, jobs)

	rec := doJSON(s, http.MethodGet, "/api/v1/batch/jobs/batch_test_1/summary", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleBatchSummaryCompleted(t *testing.T) {
	output := func(sentiment models.Sentiment, category string, priority models.Priority) *models.AnalysisResult {
		return &models.AnalysisResult{
			Sentiment:    sentiment,
			Category:     category,
			Priority:     priority,
			UrgencyScore: 5,
		}
	}
	jobs := &fakeBatch{jobs: map[string]models.BatchJob{
		"batch_test_1": {
			JobID:     "batch_test_1",
			Status:    models.JobStatusCompleted,
			Total:     3,
			Processed: 3,
			Results: []models.JobResultItem{
				{Index: 0, Output: output(models.SentimentNegative, "Infrastructure", models.PriorityHigh)},
				{Index: 1, Output: output(models.SentimentNegative, "Infrastructure", models.PriorityMedium)},
				{Index: 2, Error: "item panicked: boom"},
			},
		},
	}}
	s := newTestServer(&fakeAnalysis{}, jobs)

	rec := doJSON(s, http.MethodGet, "/api/v1/batch/jobs/batch_test_1/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		JobID   string         `json:"job_id"`
		Summary trends.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "batch_test_1", body.JobID)
	// Failed items are excluded from the aggregate.
	assert.Equal(t, 2, body.Summary.TotalAnalyzed)
	assert.Equal(t, "Infrastructure", body.Summary.TopCategory)
	assert.Equal(t, 1, body.Summary.HighPriorityCount)
}

func TestHandleSentimentTrends(t *testing.T) {
	s := newTestServer(&fakeAnalysis{}, &fakeBatch{})

	rec := doJSON(s, http.MethodGet, "/api/v1/analytics/sentiment-trends?days=3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Days   int            `json:"days"`
		Series []trends.Point `json:"series"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Days)
	require.Len(t, body.Series, 3)
	assert.True(t, body.Series[0].Date.Before(body.Series[2].Date))
}

func TestHandleSentimentTrendsBadDays(t *testing.T) {
	s := newTestServer(&fakeAnalysis{}, &fakeBatch{})

	for _, days := range []string{"abc", "0", "-2"} {
		rec := doJSON(s, http.MethodGet, "/api/v1/analytics/sentiment-trends?days="+days, "")
		assert.Equalf(t, http.StatusBadRequest, rec.Code, "days=%s", days)
	}
}

func TestHandleSentimentTrendsClampsWindow(t *testing.T) {
	s := newTestServer(&fakeAnalysis{}, &fakeBatch{})

	rec := doJSON(s, http.MethodGet, "/api/v1/analytics/sentiment-trends?days=500", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Days int `json:"days"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, maxTrendDays, body.Days)
}
