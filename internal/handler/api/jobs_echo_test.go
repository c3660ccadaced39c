package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/usecase"
)

type stubJobs struct {
	got  usecase.TimelineRequest
	jobs map[string]*models.JobStatus
	err  error
}

func (s *stubJobs) Submit(_ context.Context, req usecase.TimelineRequest) (*models.JobStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.got = req
	st := &models.JobStatus{ID: "job-1", State: models.JobPending, Symbol: req.Symbol}
	s.jobs[st.ID] = st
	return st, nil
}

func (s *stubJobs) Status(_ context.Context, id string) (*models.JobStatus, error) {
	st, ok := s.jobs[id]
	if !ok {
		return nil, models.ErrJobNotFound
	}
	return st, nil
}

func newJobsEcho(jobs *stubJobs) *echo.Echo {
	e := echo.New()
	NewJobsEchoHandler(nil, jobs).RegisterRoutes(e)
	return e
}

func post(e *echo.Echo, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJobs_SubmitAndStatus(t *testing.T) {
	jobs := &stubJobs{jobs: map[string]*models.JobStatus{}}
	e := newJobsEcho(jobs)

	rec := post(e, "/api/jobs/timeline", `{"symbol":"NIFTY","date":"2024-03-01","bodies":["sun","moon"],"tz":"Asia/Kolkata"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "/api/jobs/timeline/job-1", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, "Asia/Kolkata", jobs.got.Timezone)
	assert.Equal(t, []string{"sun", "moon"}, jobs.got.Bodies)

	var st models.JobStatus
	assert.Equal(t, http.StatusAccepted, decode(t, rec, &st))
	assert.Equal(t, models.JobPending, st.State)

	rec = get(e, "/api/jobs/timeline/job-1")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &st)
	assert.Equal(t, "NIFTY", st.Symbol)
}

func TestJobs_Errors(t *testing.T) {
	jobs := &stubJobs{jobs: map[string]*models.JobStatus{}}
	e := newJobsEcho(jobs)

	assert.Equal(t, http.StatusNotFound, get(e, "/api/jobs/timeline/nope").Code)
	assert.Equal(t, http.StatusBadRequest, post(e, "/api/jobs/timeline", `{"date":`).Code)

	jobs.err = models.ErrUnknownBody
	assert.Equal(t, http.StatusBadRequest, post(e, "/api/jobs/timeline", `{"bodies":["vulcan"]}`).Code)

	jobs.err = errors.New("enqueue timeline: redis down")
	assert.Equal(t, http.StatusInternalServerError, post(e, "/api/jobs/timeline", `{}`).Code)
}
