package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civicstack/civic-triage/internal/batch"
	"github.com/civicstack/civic-triage/internal/models"
	"github.com/civicstack/civic-triage/internal/trends"
)

const maxTrendDays = 90

type analyzeRequest struct {
	Text    string            `json:"text"`
	Context map[string]string `json:"context,omitempty"`
}

type batchRequest struct {
	Messages []string          `json:"messages"`
	Context  map[string]string `json:"context,omitempty"`
	OwnerID  string            `json:"owner_id,omitempty"`
}

// jobResponse adds the derived progress field to the stored job record.
type jobResponse struct {
	models.BatchJob
	ProgressPercentage float64 `json:"progress_percentage"`
}

func toJobResponse(job models.BatchJob) jobResponse {
	return jobResponse{BatchJob: job, ProgressPercentage: job.ProgressPercentage()}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func (s *Server) handleHealth(c echo.Context) error {
	if s.storeCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := s.storeCheck(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":       "unhealthy",
				"failed_check": "store",
				"error":        err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": time.Since(s.started).Seconds(),
		"latency_p95_ms": float64(s.analysis.LatencyP95()) / float64(time.Millisecond),
	})
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	result, err := s.analysis.Analyze(c.Request().Context(), models.AnalysisRequest{
		Text:    req.Text,
		Context: req.Context,
	})
	if err != nil {
		if errors.Is(err, models.ErrEmptyText) {
			return c.JSON(http.StatusBadRequest, errorBody("text must be non-empty after normalization"))
		}
		s.logger.Error("analyze request failed", slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, errorBody("analysis failed"))
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleBatchSubmit(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	owner := req.OwnerID
	if owner == "" {
		owner = c.Request().Header.Get("X-Owner-ID")
	}

	job, err := s.batch.Submit(c.Request().Context(), owner, req.Messages, req.Context)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err.Error()))
	}
	return c.JSON(http.StatusAccepted, toJobResponse(job))
}

func (s *Server) handleBatchStatus(c echo.Context) error {
	job, err := s.batch.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, batch.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("job not found"))
		}
		s.logger.Error("batch status lookup failed",
			slog.String("job_id", c.Param("id")),
			slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, errorBody("job lookup failed"))
	}
	return c.JSON(http.StatusOK, toJobResponse(job))
}

func (s *Server) handleBatchSummary(c echo.Context) error {
	job, err := s.batch.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, batch.ErrJobNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("job not found"))
		}
		s.logger.Error("batch summary lookup failed",
			slog.String("job_id", c.Param("id")),
			slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, errorBody("job lookup failed"))
	}
	if !job.Status.Terminal() {
		return c.JSON(http.StatusConflict, errorBody("job still processing"))
	}

	results := make([]models.AnalysisResult, 0, len(job.Results))
	for _, item := range job.Results {
		if item.Output != nil {
			results = append(results, *item.Output)
		}
	}
	summary := trends.Summarize(results, time.Now())
	return c.JSON(http.StatusOK, map[string]any{
		"job_id":  job.JobID,
		"status":  job.Status,
		"summary": summary,
	})
}

func (s *Server) handleSentimentTrends(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, errorBody("days must be a positive integer"))
		}
		days = parsed
	}
	if days > maxTrendDays {
		days = maxTrendDays
	}

	points := s.series.SentimentSeries(days)
	return c.JSON(http.StatusOK, map[string]any{
		"days":   days,
		"series": points,
	})
}
