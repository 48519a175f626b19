package fitness

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/2beens/workoutlog/internal/fitness/progress"
	"github.com/2beens/workoutlog/internal/fitness/workouts"
	"github.com/2beens/workoutlog/internal/telemetry/tracing"
	"github.com/2beens/workoutlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type workoutStore interface {
	Load(ctx context.Context) workouts.Log
	Add(ctx context.Context, current workouts.Log, name, typeText, durationText string) (workouts.Log, error)
	Delete(ctx context.Context, current workouts.Log, id int64) workouts.Log
}

type Notification struct {
	Status      string `json:"status"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var (
	notificationAdded = Notification{
		Status:      "success",
		Title:       "Workout added",
		Description: "Your workout has been logged successfully",
	}
	notificationMissingFields = Notification{
		Status:      "error",
		Title:       "Error",
		Description: "Please fill in all fields",
	}
	notificationDeleted = Notification{
		Status:      "info",
		Title:       "Workout deleted",
		Description: "The workout has been removed from your log",
	}
)

type AddWorkoutRequest struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Duration workouts.Duration `json:"duration"`
}

type AddWorkoutResponse struct {
	Workout      workouts.Record  `json:"workout"`
	Total        int              `json:"total"`
	Progress     progress.Summary `json:"progress"`
	Notification Notification     `json:"notification"`
}

type ValidationErrorResponse struct {
	Fields       []string     `json:"fields"`
	Notification Notification `json:"notification"`
}

type DeleteWorkoutResponse struct {
	DeletedID    int64            `json:"deletedId"`
	Deleted      bool             `json:"deleted"`
	Total        int              `json:"total"`
	Progress     progress.Summary `json:"progress"`
	Notification Notification     `json:"notification"`
}

type ListResponse struct {
	Workouts workouts.Log     `json:"workouts"`
	Total    int              `json:"total"`
	Progress progress.Summary `json:"progress"`
}

type TypesResponse struct {
	Types []workouts.Type `json:"types"`
}

// Handler is the HTTP face of the workout log. It keeps the current
// log and lets one action at a time mutate it: every add or delete is
// followed by a full recompute of the progress summary.
type Handler struct {
	mutex      sync.Mutex
	store      workoutStore
	aggregator *progress.Aggregator
	current    workouts.Log
}

func NewHandler(ctx context.Context, store workoutStore, aggregator *progress.Aggregator) *Handler {
	current := store.Load(ctx)
	log.Infof("workout log loaded, %d workouts", len(current))

	return &Handler{
		store:      store,
		aggregator: aggregator,
		current:    current,
	}
}

// SetupRoutes registers the workout routes. Extra middleware, if any,
// is applied to the add route only.
func (handler *Handler) SetupRoutes(r *mux.Router, addMiddleware ...mux.MiddlewareFunc) {
	r.HandleFunc("/workouts", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts/progress", handler.HandleProgress).Methods("GET", "OPTIONS").Name("workouts-progress")
	r.HandleFunc("/workouts/types", handler.HandleTypes).Methods("GET", "OPTIONS").Name("workout-types")
	r.HandleFunc("/workouts/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")

	var addHandler http.Handler = http.HandlerFunc(handler.HandleAdd)
	for i := len(addMiddleware) - 1; i >= 0; i-- {
		addHandler = addMiddleware[i](addHandler)
	}
	r.Handle("/workouts", addHandler).Methods("POST", "OPTIONS").Name("new-workout")
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	req, err := parseAddRequest(r)
	if err != nil {
		log.Tracef("add workout, parse request: %s", err)
		http.Error(w, "invalid add workout request", http.StatusBadRequest)
		return
	}

	handler.mutex.Lock()
	defer handler.mutex.Unlock()

	next, err := handler.store.Add(ctx, handler.current, req.Name, req.Type, string(req.Duration))
	if err != nil {
		var verr *workouts.ValidationError
		if errors.As(err, &verr) {
			log.Debugf("add workout rejected: %s", verr)
			pkg.WriteJSON(w, ValidationErrorResponse{
				Fields:       verr.Fields(),
				Notification: validationNotification(verr),
			}, http.StatusBadRequest)
			return
		}
		log.Errorf("add workout [%s] [%s]: %s", req.Name, req.Type, err)
		http.Error(w, "failed to add workout", http.StatusInternalServerError)
		return
	}
	handler.current = next

	added := next[len(next)-1]
	span.SetAttributes(attribute.Int64("workout.id", added.ID))
	log.Printf("new workout added: %d [%s]", added.ID, added.Name)

	pkg.WriteJSON(w, AddWorkoutResponse{
		Workout:      added,
		Total:        len(next),
		Progress:     handler.aggregator.Compute(next),
		Notification: notificationAdded,
	}, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "DELETE, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	handler.mutex.Lock()
	defer handler.mutex.Unlock()

	before := len(handler.current)
	handler.current = handler.store.Delete(ctx, handler.current, id)
	deleted := len(handler.current) < before
	log.Printf("delete workout %d, deleted: %t", id, deleted)

	pkg.WriteJSON(w, DeleteWorkoutResponse{
		DeletedID:    id,
		Deleted:      deleted,
		Total:        len(handler.current),
		Progress:     handler.aggregator.Compute(handler.current),
		Notification: notificationDeleted,
	}, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	handler.mutex.Lock()
	current := handler.current
	handler.mutex.Unlock()

	if current == nil {
		current = workouts.Log{}
	}

	pkg.WriteJSON(w, ListResponse{
		Workouts: current,
		Total:    len(current),
		Progress: handler.aggregator.Compute(current),
	}, http.StatusOK)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	handler.mutex.Lock()
	current := handler.current
	handler.mutex.Unlock()

	pkg.WriteJSON(w, handler.aggregator.Compute(current), http.StatusOK)
}

func (handler *Handler) HandleTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	pkg.WriteJSON(w, TypesResponse{Types: workouts.Types()}, http.StatusOK)
}

// parseAddRequest reads either a JSON body or form values.
func parseAddRequest(r *http.Request) (AddWorkoutRequest, error) {
	var req AddWorkoutRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return AddWorkoutRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return AddWorkoutRequest{}, err
	}
	req.Name = r.Form.Get("name")
	req.Type = r.Form.Get("type")
	req.Duration = workouts.Duration(r.Form.Get("duration"))

	return req, nil
}

func validationNotification(verr *workouts.ValidationError) Notification {
	if len(verr.Missing) == 0 && len(verr.Invalid) > 0 {
		return Notification{
			Status:      "error",
			Title:       "Error",
			Description: "Please choose Cardio, Strength or Flexibility",
		}
	}
	return notificationMissingFields
}
