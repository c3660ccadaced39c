package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/services/aspects"
	"AstroSignal/internal/usecase"
	xhttp "AstroSignal/pkg/http"
	xlogger "AstroSignal/pkg/logger"
	"AstroSignal/pkg/util"
)

// TimelineEchoHandler serves the timeline, aspects and catalog endpoints.
type TimelineEchoHandler struct {
	logger   *xlogger.Logger
	builder  *usecase.ParamsBuilder
	timeline *usecase.TimelineUseCase
	snapshot *usecase.SnapshotUseCase
	limit    echo.MiddlewareFunc
	timeout  time.Duration
	upgrader *websocket.Upgrader
}

func NewTimelineEchoHandler(logger *xlogger.Logger, builder *usecase.ParamsBuilder, timeline *usecase.TimelineUseCase, snapshot *usecase.SnapshotUseCase) *TimelineEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &TimelineEchoHandler{logger: logger, builder: builder, timeline: timeline, snapshot: snapshot, timeout: 60 * time.Second, upgrader: newUpgrader(nil)}
}

// WithOrigins limits websocket upgrades to the given origins; empty allows any.
func (h *TimelineEchoHandler) WithOrigins(origins []string) *TimelineEchoHandler {
	h.upgrader = newUpgrader(origins)
	return h
}

// WithTimeout bounds every timeline computation, including websocket requests.
func (h *TimelineEchoHandler) WithTimeout(d time.Duration) *TimelineEchoHandler {
	h.timeout = d
	return h
}

// WithRateLimit puts mw in front of every /api route.
func (h *TimelineEchoHandler) WithRateLimit(mw echo.MiddlewareFunc) *TimelineEchoHandler {
	h.limit = mw
	return h
}

func (h *TimelineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	if h.limit != nil {
		g.Use(h.limit)
	}
	g.GET("/timeline", h.Timeline)
	g.GET("/aspects", h.Aspects)
	g.GET("/catalog", h.Catalog)
	e.GET("/ws/timeline", h.Stream)
}

// TimelineResponse is the payload of GET /api/timeline.
type TimelineResponse struct {
	Symbol    string                  `json:"symbol,omitempty"`
	Timezone  string                  `json:"timezone"`
	Policy    string                  `json:"policy"`
	Key       string                  `json:"key"`
	Reference models.Body             `json:"reference"`
	Timeline  *models.Timeline        `json:"timeline,omitempty"`
	Rows      []usecase.TableRow      `json:"rows,omitempty"`
	Summary   *models.TimelineSummary `json:"summary,omitempty"`
}

func (h *TimelineEchoHandler) Timeline(c echo.Context) error {
	q := &models.TimelineQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, q); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req, aerr := timelineRequest(q)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}
	p, loc, err := h.builder.Timeline(req)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()
	tl, err := h.timeline.ComputeTimeline(ctx, p)
	if err != nil {
		h.logger.Error("timeline usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}

	res := TimelineResponse{
		Symbol:    q.Symbol,
		Timezone:  loc.String(),
		Policy:    p.Policy.Name(),
		Key:       keyName(p),
		Reference: p.Reference,
	}
	local := usecase.Localize(tl, loc)
	if q.Format == "table" {
		res.Rows = usecase.TimelineTable(local, p.Reference, loc)
		res.Summary = &local.Summary
	} else {
		res.Timeline = local
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *TimelineEchoHandler) Aspects(c echo.Context) error {
	q := &models.AspectsQuery{}
	if verr := xhttp.ReadAndValidateRequest(c, q); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	req := usecase.SnapshotRequest{
		Time:        q.Time,
		Bodies:      util.SplitList(q.Bodies),
		Policy:      q.Policy,
		Reference:   q.Reference,
		Timezone:    q.TZ,
		Conjunction: q.Conjunction,
	}
	if q.Orb != "" {
		orb, err := strconv.ParseFloat(q.Orb, 64)
		if err != nil {
			return xhttp.AppErrorResponse(c, xhttp.FieldError("ERR_NUMERIC", "orb", "orb must be a number"))
		}
		req.Orb = &orb
	}
	p, err := h.builder.Snapshot(req)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	snap, err := h.snapshot.GetSnapshot(c.Request().Context(), p)
	if err != nil {
		h.logger.Error("snapshot usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}

// CatalogResponse lists what a request may select.
type CatalogResponse struct {
	Catalog  models.AspectCatalog `json:"catalog"`
	Policies []string             `json:"policies"`
	Keys     []string             `json:"keys"`
	Bodies   []models.Body        `json:"bodies"`
}

func (h *TimelineEchoHandler) Catalog(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return xhttp.SuccessResponse(c, CatalogResponse{
		Catalog:  h.builder.Catalog(),
		Policies: aspects.PolicyNames(),
		Keys:     []string{usecase.KeySentiment, usecase.KeyNakshatra, usecase.KeySign},
		Bodies:   models.AllBodies(),
	})
}

func timelineRequest(q *models.TimelineQuery) (usecase.TimelineRequest, *xhttp.AppError) {
	req := usecase.TimelineRequest{
		Symbol:      q.Symbol,
		Date:        q.Date,
		Start:       q.Start,
		End:         q.End,
		Step:        q.Step,
		Bodies:      util.SplitList(q.Bodies),
		Policy:      q.Policy,
		Key:         q.Key,
		Reference:   q.Reference,
		Timezone:    q.TZ,
		Conjunction: q.Conjunction,
		Workers:     q.Workers,
	}
	if q.Orb != "" {
		orb, err := strconv.ParseFloat(q.Orb, 64)
		if err != nil {
			return req, xhttp.FieldError("ERR_NUMERIC", "orb", "orb must be a number")
		}
		req.Orb = &orb
	}
	return req, nil
}

func keyName(p usecase.TimelineParams) string {
	if p.Key == nil {
		return usecase.KeySentiment
	}
	return p.Key.Name()
}

var _ xhttp.Handler = (*TimelineEchoHandler)(nil)

func contextWithTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), d)
}
