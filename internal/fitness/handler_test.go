package fitness_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/2beens/workoutlog/internal/fitness"
	"github.com/2beens/workoutlog/internal/fitness/progress"
	"github.com/2beens/workoutlog/internal/fitness/workouts"
	"github.com/2beens/workoutlog/internal/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEnv struct {
	router   *mux.Router
	memStore *storage.MemoryStore
	handler  *fitness.Handler
}

func newTestEnv(t *testing.T, persisted string, addMiddleware ...mux.MiddlewareFunc) *testEnv {
	t.Helper()
	ctx := context.Background()

	memStore := storage.NewMemoryStore(10)
	if persisted != "" {
		require.NoError(t, memStore.Write(ctx, workouts.DefaultKey, persisted))
	}

	clockStart := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	ticks := 0
	store := workouts.NewStore(workouts.StoreParams{
		Storage: memStore,
		Now: func() time.Time {
			ticks++
			return clockStart.Add(time.Duration(ticks) * time.Minute)
		},
	})

	handler := fitness.NewHandler(ctx, store, progress.NewAggregator(time.UTC))
	r := mux.NewRouter()
	handler.SetupRoutes(r, addMiddleware...)

	return &testEnv{
		router:   r,
		memStore: memStore,
		handler:  handler,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) addJSON(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("POST", "/workouts", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

func (e *testEnv) list(t *testing.T) fitness.ListResponse {
	t.Helper()
	req, err := http.NewRequest("GET", "/workouts", nil)
	require.NoError(t, err)
	rr := e.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp fitness.ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHandler_List_Empty(t *testing.T) {
	env := newTestEnv(t, "")

	req, err := http.NewRequest("GET", "/workouts", nil)
	require.NoError(t, err)
	rr := env.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"workouts":[],"total":0,"progress":{"series":[],"totalWorkouts":0,"totalDurationMinutes":0,"byType":{}}}`,
		rr.Body.String(),
	)
}

func TestHandler_List_CorruptPersistedLog(t *testing.T) {
	env := newTestEnv(t, "not valid json")

	resp := env.list(t)
	assert.Empty(t, resp.Workouts)
	assert.Equal(t, 0, resp.Total)
}

func TestHandler_AddJSON(t *testing.T) {
	env := newTestEnv(t, "")

	rr := env.addJSON(t, `{"name":"30 min run","type":"Cardio","duration":"30"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var addResp fitness.AddWorkoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &addResp))
	assert.Equal(t, "30 min run", addResp.Workout.Name)
	assert.Equal(t, workouts.TypeCardio, addResp.Workout.Type)
	assert.Equal(t, 1, addResp.Total)
	assert.Equal(t, "success", addResp.Notification.Status)
	assert.Equal(t, "Workout added", addResp.Notification.Title)

	// numeric duration works as well
	rr = env.addJSON(t, `{"name":"Bench","type":"Strength","duration":20}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &addResp))
	assert.Equal(t, 2, addResp.Total)
	require.Len(t, addResp.Progress.Series, 1)
	assert.Equal(t, progress.DailyPoint{
		Date:                 "2024-03-10",
		TotalDurationMinutes: 50,
		WorkoutCount:         2,
	}, addResp.Progress.Series[0])
	assert.Equal(t, 2, addResp.Progress.TotalWorkouts)
	assert.Equal(t, 50, addResp.Progress.TotalDurationMinutes)

	resp := env.list(t)
	require.Len(t, resp.Workouts, 2)
	assert.Equal(t, "30 min run", resp.Workouts[0].Name)
	assert.Equal(t, "Bench", resp.Workouts[1].Name)

	// persisted as well
	persisted, err := env.memStore.Read(context.Background(), workouts.DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, persisted, `"name":"Bench"`)
}

func TestHandler_AddForm(t *testing.T) {
	env := newTestEnv(t, "")

	form := url.Values{}
	form.Set("name", "Morning stretch")
	form.Set("type", "flexibility")
	form.Set("duration", "15")
	req, err := http.NewRequest("POST", "/workouts", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := env.do(t, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := env.list(t)
	require.Len(t, resp.Workouts, 1)
	assert.Equal(t, workouts.TypeFlexibility, resp.Workouts[0].Type)
	assert.Equal(t, workouts.Duration("15"), resp.Workouts[0].Duration)
}

func TestHandler_Add_Validation(t *testing.T) {
	env := newTestEnv(t, "")

	for _, tc := range []struct {
		body        string
		fields      []string
		description string
	}{
		{`{"name":"","type":"Cardio","duration":"10"}`, []string{"name"}, "Please fill in all fields"},
		{`{"name":"Run","type":"","duration":"10"}`, []string{"type"}, "Please fill in all fields"},
		{`{"name":"Run","type":"Cardio","duration":""}`, []string{"duration"}, "Please fill in all fields"},
		{`{"name":"Run","type":"Cardio"}`, []string{"duration"}, "Please fill in all fields"},
		{`{"name":"Run","type":"Karate","duration":"10"}`, []string{"type"}, "Please choose Cardio, Strength or Flexibility"},
	} {
		rr := env.addJSON(t, tc.body)
		require.Equal(t, http.StatusBadRequest, rr.Code, tc.body)

		var resp fitness.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, tc.fields, resp.Fields)
		assert.Equal(t, "error", resp.Notification.Status)
		assert.Equal(t, tc.description, resp.Notification.Description)
	}

	assert.Empty(t, env.list(t).Workouts)
	_, err := env.memStore.Read(context.Background(), workouts.DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestHandler_Add_BadJSON(t *testing.T) {
	env := newTestEnv(t, "")

	rr := env.addJSON(t, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.addJSON(t, `{"name":"Run","type":"Cardio","duration":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Delete(t *testing.T) {
	env := newTestEnv(t, "")

	rr := env.addJSON(t, `{"name":"Run","type":"Cardio","duration":"30"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var addResp fitness.AddWorkoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &addResp))

	req, err := http.NewRequest("DELETE", fmt.Sprintf("/workouts/%d", addResp.Workout.ID), nil)
	require.NoError(t, err)
	rr = env.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var delResp fitness.DeleteWorkoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &delResp))
	assert.Equal(t, addResp.Workout.ID, delResp.DeletedID)
	assert.True(t, delResp.Deleted)
	assert.Equal(t, 0, delResp.Total)
	assert.Empty(t, delResp.Progress.Series)
	assert.Equal(t, "info", delResp.Notification.Status)

	// unknown id: nothing happens
	req, err = http.NewRequest("DELETE", "/workouts/42", nil)
	require.NoError(t, err)
	rr = env.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &delResp))
	assert.False(t, delResp.Deleted)

	req, err = http.NewRequest("DELETE", "/workouts/abc", nil)
	require.NoError(t, err)
	rr = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	persisted, err := env.memStore.Read(context.Background(), workouts.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", persisted)
}

func TestHandler_LoadsPersistedLogOnStart(t *testing.T) {
	env := newTestEnv(t, `[
		{"id":1710064800000,"name":"Run","type":"Cardio","duration":"30"},
		{"id":1710151200000,"name":"Yoga","type":"Flexibility","duration":"x"}
	]`)

	resp := env.list(t)
	require.Len(t, resp.Workouts, 2)
	assert.Equal(t, 2, resp.Progress.TotalWorkouts)
	assert.Equal(t, 30, resp.Progress.TotalDurationMinutes)
	require.Len(t, resp.Progress.Series, 2)
	assert.Equal(t, "2024-03-10", resp.Progress.Series[0].Date)
	assert.Equal(t, "2024-03-11", resp.Progress.Series[1].Date)

	req, err := http.NewRequest("GET", "/workouts/progress", nil)
	require.NoError(t, err)
	rr := env.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var summary progress.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, resp.Progress, summary)

	// new ids continue after the persisted ones
	rr = env.addJSON(t, `{"name":"Row","type":"Cardio","duration":"10"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var addResp fitness.AddWorkoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &addResp))
	assert.Greater(t, addResp.Workout.ID, int64(1710151200000))
}

func TestHandler_Types(t *testing.T) {
	env := newTestEnv(t, "")

	req, err := http.NewRequest("GET", "/workouts/types", nil)
	require.NoError(t, err)
	rr := env.do(t, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"types":["Cardio","Strength","Flexibility"]}`, rr.Body.String())
}

func TestHandler_AddMiddlewareOnlyOnAdd(t *testing.T) {
	blocked := 0
	blockAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			blocked++
			http.Error(w, "slow down", http.StatusTooManyRequests)
		})
	}
	env := newTestEnv(t, "", blockAll)

	rr := env.addJSON(t, `{"name":"Run","type":"Cardio","duration":"30"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, 1, blocked)

	assert.Empty(t, env.list(t).Workouts)
	assert.Equal(t, 1, blocked)
}
