package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/usecase"
	xhttp "AstroSignal/pkg/http"
	xlogger "AstroSignal/pkg/logger"
)

type timelineJobs interface {
	Submit(ctx context.Context, req usecase.TimelineRequest) (*models.JobStatus, error)
	Status(ctx context.Context, id string) (*models.JobStatus, error)
}

// JobsEchoHandler exposes asynchronous timeline jobs.
type JobsEchoHandler struct {
	logger *xlogger.Logger
	jobs   timelineJobs
	limit  echo.MiddlewareFunc
}

func NewJobsEchoHandler(logger *xlogger.Logger, jobs timelineJobs) *JobsEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &JobsEchoHandler{logger: logger, jobs: jobs}
}

func (h *JobsEchoHandler) WithRateLimit(mw echo.MiddlewareFunc) *JobsEchoHandler {
	h.limit = mw
	return h
}

func (h *JobsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/jobs")
	if h.limit != nil {
		g.Use(h.limit)
	}
	g.POST("/timeline", h.Submit)
	g.GET("/timeline/:id", h.Status)
}

// Submit accepts a JSON TimelineRequest and answers 202 with the job id.
func (h *JobsEchoHandler) Submit(c echo.Context) error {
	var req usecase.TimelineRequest
	if err := c.Bind(&req); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid JSON body"))
	}
	st, err := h.jobs.Submit(c.Request().Context(), req)
	if err != nil {
		h.logger.Warn("timeline job rejected", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/jobs/timeline/"+st.ID)
	return xhttp.AcceptedResponse(c, st)
}

func (h *JobsEchoHandler) Status(c echo.Context) error {
	st, err := h.jobs.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, st)
}

var _ xhttp.Handler = (*JobsEchoHandler)(nil)
