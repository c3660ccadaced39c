package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/usecase"
	"AstroSignal/pkg/http/middleware"
	xlogger "AstroSignal/pkg/logger"
)

func newUpgrader(origins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return middleware.OriginAllowed(origins, r.Header.Get(echo.HeaderOrigin))
		},
	}
}

const (
	wsWriteWait = 10 * time.Second
	wsReadLimit = 64 << 10
)

// Stream message types.
const (
	StreamEvent   = "event"
	StreamSummary = "summary"
	StreamError   = "error"
)

// StreamMessage is one websocket frame.
type StreamMessage struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data"`
}

// StreamSummaryData closes one request's stream.
type StreamSummaryData struct {
	Evaluated int                    `json:"evaluated"`
	Events    int                    `json:"events"`
	Cancelled bool                   `json:"cancelled"`
	Skipped   []models.SkippedSample `json:"skipped,omitempty"`
	Warnings  []string               `json:"warnings,omitempty"`
	Summary   models.TimelineSummary `json:"summary"`
}

// Stream upgrades to a websocket and serves timeline requests until the
// client disconnects. Each request (a JSON TimelineRequest) is answered with
// one "event" frame per change point followed by one "summary" frame.
func (h *TimelineEchoHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", xlogger.Error(err))
			}
			return nil
		}

		var req usecase.TimelineRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			if werr := h.writeFrame(conn, StreamMessage{Type: StreamError, Data: toAppError(models.ErrInvalidParams).WithParam("decode", err.Error())}); werr != nil {
				return nil
			}
			continue
		}

		tl, loc, err := h.computeStream(c, req)
		if err == nil {
			if err := h.streamTimeline(conn, req.RequestID, usecase.Localize(tl, loc)); err != nil {
				return nil
			}
			continue
		}
		if werr := h.writeFrame(conn, StreamMessage{Type: StreamError, RequestID: req.RequestID, Data: toAppError(err)}); werr != nil {
			return nil
		}
	}
}

// computeStream runs one websocket request under the handler timeout.
func (h *TimelineEchoHandler) computeStream(c echo.Context, req usecase.TimelineRequest) (*models.Timeline, *time.Location, error) {
	p, loc, err := h.builder.Timeline(req)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := contextWithTimeout(c, h.timeout)
	defer cancel()
	tl, err := h.timeline.ComputeTimeline(ctx, p)
	return tl, loc, err
}

func (h *TimelineEchoHandler) streamTimeline(conn *websocket.Conn, id string, tl *models.Timeline) error {
	for i := range tl.Events {
		if err := h.writeFrame(conn, StreamMessage{Type: StreamEvent, RequestID: id, Data: tl.Events[i]}); err != nil {
			return err
		}
	}
	return h.writeFrame(conn, StreamMessage{Type: StreamSummary, RequestID: id, Data: StreamSummaryData{
		Evaluated: tl.Evaluated,
		Events:    len(tl.Events),
		Cancelled: tl.Cancelled,
		Skipped:   tl.Skipped,
		Warnings:  tl.Warnings,
		Summary:   tl.Summary,
	}})
}

func (h *TimelineEchoHandler) writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Warn("websocket write failed", xlogger.String("type", msg.Type), xlogger.Error(err))
		return err
	}
	return nil
}
