package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
	"github.com/noah-isme/tempo-schedule-api/internal/service"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newTestScheduleService() *service.ClassScheduleService {
	return service.NewClassScheduleService(models.NewScheduleState(), nil, validator.New(), zap.NewNop(), nil, service.ClassScheduleConfig{})
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func slotBody(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	payload, err := json.Marshal(fields)
	require.NoError(t, err)
	return payload
}

func TestScheduleHandlerCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(newTestScheduleService())

	c, w := newGinContext(http.MethodGet, "/catalog", nil)
	h.Catalog(c)

	require.Equal(t, http.StatusOK, w.Code)
	var catalog models.CatalogView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &catalog))
	assert.Len(t, catalog.ClassTypes, models.ClassTypeCount)
	assert.Equal(t, "Mon", catalog.Days[0])
}

func TestScheduleHandlerAddClass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestScheduleService()
	h := NewScheduleHandler(svc)

	c, w := newGinContext(http.MethodPost, "/schedule/classes", slotBody(t, map[string]string{"day": "Mon", "type": "Lagree", "time": "6:00 AM"}))
	h.AddClass(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"day":"Mon","type":"Lagree","time":"6:00 AM","value":"TBD","locked":false}`, string(decodeEnvelope(t, w).Data))

	c, w = newGinContext(http.MethodPost, "/schedule/classes", slotBody(t, map[string]string{"day": "Monday", "type": "Lagree", "time": "6:00 AM"}))
	h.AddClass(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodPost, "/schedule/classes", []byte(`{`))
	h.AddClass(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, svc.PlaceClass("Tue", "Boxing", "6:30 AM", "DB"))
	c, w = newGinContext(http.MethodPost, "/schedule/classes", slotBody(t, map[string]string{"day": "Tue", "type": "Lagree", "time": "6:30 AM", "instructorId": "DB"}))
	h.AddClass(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INSTRUCTOR_DOUBLE_BOOKED", decodeEnvelope(t, w).Error.Code)
}

func TestScheduleHandlerAssign(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(newTestScheduleService())

	c, w := newGinContext(http.MethodPost, "/schedule/assign", slotBody(t, map[string]string{"day": "Mon", "type": "Lagree", "time": "6:00 AM", "instructorId": "JD"}))
	h.Assign(c)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	c, w = newGinContext(http.MethodPost, "/schedule/assign", slotBody(t, map[string]string{"day": "Mon", "type": "Strength", "time": "6:00 AM", "instructorId": "JD"}))
	h.Assign(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"day":"Mon","type":"Strength","time":"6:00 AM","value":"JD","locked":true}`, string(decodeEnvelope(t, w).Data))

	c, w = newGinContext(http.MethodPost, "/schedule/assign", slotBody(t, map[string]string{"day": "Mon", "type": "Strength", "time": "6:00 AM"}))
	h.Assign(c)
	assert.Equal(t, http.StatusBadRequest, w.Code, "instructorId is required")
}

func TestScheduleHandlerLocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestScheduleService()
	h := NewScheduleHandler(svc)
	require.NoError(t, svc.PlaceClass("Wed", "Lagree", "7:30 AM", ""))

	slot := map[string]string{"day": "Wed", "type": "Lagree", "time": "7:30 AM"}
	c, w := newGinContext(http.MethodPost, "/schedule/locks", slotBody(t, slot))
	h.Lock(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.NoError(t, svc.PlaceClass("Wed", "Lagree", "7:30 AM", "EF"))
	c, w = newGinContext(http.MethodPost, "/schedule/locks", slotBody(t, slot))
	h.Lock(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"day":"Wed","type":"Lagree","time":"7:30 AM","locked":true,"instructorId":"EF"}`, string(decodeEnvelope(t, w).Data))

	c, w = newGinContext(http.MethodGet, "/schedule/locks?day=Wed&type=Lagree&time=7%3A30+AM", nil)
	h.LockStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"locked":true`)

	c, w = newGinContext(http.MethodDelete, "/schedule/locks", slotBody(t, slot))
	h.Unlock(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed":true}`, string(decodeEnvelope(t, w).Data))
}

func TestScheduleHandlerGenerateAndUndo(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestScheduleService()
	h := NewScheduleHandler(svc)

	c, w := newGinContext(http.MethodPost, "/schedule/undo", nil)
	h.Undo(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	c, w = newGinContext(http.MethodPost, "/schedule/seed", nil)
	h.Seed(c)
	require.Equal(t, http.StatusOK, w.Code)
	var seed struct {
		Seeded int `json:"seeded"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &seed))
	assert.Positive(t, seed.Seeded)

	c, w = newGinContext(http.MethodPost, "/schedule/generate", nil)
	h.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)
	var generated struct {
		Stats struct {
			Candidates int `json:"candidates"`
			Assigned   int `json:"assigned"`
			Unresolved int `json:"unresolved"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &generated))
	assert.Equal(t, seed.Seeded, generated.Stats.Candidates)
	assert.Equal(t, generated.Stats.Candidates, generated.Stats.Assigned+generated.Stats.Unresolved)

	c, w = newGinContext(http.MethodPost, "/schedule/undo", nil)
	h.Undo(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"restored":true,"remaining":1}`, string(decodeEnvelope(t, w).Data))
	assert.Zero(t, svc.GetTotalAssignedClasses())
}

func TestScheduleHandlerStateCarriesMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewScheduleHandler(newTestScheduleService())

	c, w := newGinContext(http.MethodGet, "/state", nil)
	c.Set("response_meta", map[string]interface{}{"source": "default"})
	h.State(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "default", env.Meta["source"])
	var state struct {
		Instructors []models.Instructor `json:"instructors"`
		UndoDepth   int                 `json:"undoDepth"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Len(t, state.Instructors, 9)
}

func TestScheduleHandlerClearAndStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestScheduleService()
	h := NewScheduleHandler(svc)
	require.NoError(t, svc.AssignInstructor("Fri", "Lagree", "8:30 AM", "SS"))

	c, w := newGinContext(http.MethodGet, "/schedule/stats", nil)
	h.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"totalAssigned":1`)

	c, w = newGinContext(http.MethodPost, "/schedule/clear", nil)
	h.Clear(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"changed":true}`, string(decodeEnvelope(t, w).Data))

	c, w = newGinContext(http.MethodGet, "/schedule/audit", nil)
	h.Audit(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"healthy":true,"violations":[]}`, string(decodeEnvelope(t, w).Data))
}
