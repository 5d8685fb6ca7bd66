// Package api exposes schedules, items and preferences over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/planner"
	"meal-scheduler/internal/schedule"
)

const maxBodyBytes = 1 << 20

// ItemStore is the catalog surface the API needs.
type ItemStore interface {
	FetchItems(ctx context.Context, userID string) ([]catalog.Item, error)
	Get(ctx context.Context, id string) (*catalog.Item, error)
	Save(ctx context.Context, userID string, n catalog.NewItem) (*catalog.Item, error)
	Update(ctx context.Context, userID, id string, n catalog.NewItem) (*catalog.Item, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, userID string, rows []catalog.ImportRow) ([]catalog.Item, error)
	ListTags(ctx context.Context, userID string) ([]catalog.Tag, error)
}

// PreferenceStore reads and writes restricted tags.
type PreferenceStore interface {
	FetchRestrictions(ctx context.Context, userID string) ([]string, error)
	SetRestrictions(ctx context.Context, userID string, tags []string) error
}

// Server serves the JSON API.
type Server struct {
	planner *planner.Planner
	items   ItemStore
	prefs   PreferenceStore
	secret  []byte
}

// NewServer creates a new Server.
func NewServer(p *planner.Planner, items ItemStore, prefs PreferenceStore, jwtSecret string) *Server {
	return &Server{
		planner: p,
		items:   items,
		prefs:   prefs,
		secret:  []byte(jwtSecret),
	}
}

// Register mounts the API routes on mux. /health is public; /api/ requires a token.
func (s *Server) Register(mux *http.ServeMux) {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/schedules/preview", s.handlePreview)
	api.HandleFunc("POST /api/schedules", s.handleCreateSchedule)
	api.HandleFunc("GET /api/schedules", s.handleListSchedules)
	api.HandleFunc("GET /api/schedules/{id}", s.handleGetSchedule)
	api.HandleFunc("DELETE /api/schedules/{id}", s.handleDeleteSchedule)
	api.HandleFunc("PUT /api/schedules/{id}/slots/{date}/{meal}", s.handleSetSlot)
	api.HandleFunc("DELETE /api/schedules/{id}/slots/{date}/{meal}", s.handleRemoveSlot)
	api.HandleFunc("GET /api/items", s.handleListItems)
	api.HandleFunc("POST /api/items", s.handleCreateItem)
	api.HandleFunc("POST /api/items/import", s.handleImportItems)
	api.HandleFunc("PUT /api/items/{id}", s.handleUpdateItem)
	api.HandleFunc("DELETE /api/items/{id}", s.handleDeleteItem)
	api.HandleFunc("GET /api/tags", s.handleListTags)
	api.HandleFunc("GET /api/preferences", s.handleGetPreferences)
	api.HandleFunc("PUT /api/preferences", s.handlePutPreferences)

	mux.Handle("/api/", s.authenticate(api))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler returns a mux with only the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type rangeRequest struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Replace bool   `json:"replace"`
}

// dates defaults to the week after today when start is empty, and to a
// seven-day span when end is empty.
func (req rangeRequest) dates() (time.Time, time.Time, error) {
	var start time.Time
	if req.Start == "" {
		start = planner.GetNextMonday(time.Now())
	} else {
		d, err := schedule.ParseDate(req.Start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d
	}
	if req.End == "" {
		_, end := planner.WeekRange(start)
		return start, end, nil
	}
	end, err := schedule.ParseDate(req.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, end, err := req.dates()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := s.planner.GeneratePlan(r.Context(), userFrom(r), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start, end, err := req.dates()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()
	plan, err := s.planner.GeneratePlan(ctx, userFrom(r), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	id, err := s.planner.SavePlan(ctx, plan, req.Replace)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	saved, err := s.planner.LoadPlan(ctx, userFrom(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	list, err := s.planner.ListPlans(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	saved, err := s.planner.LoadPlan(r.Context(), userFrom(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.DeletePlan(r.Context(), userFrom(r), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type slotRequest struct {
	MainID string `json:"main_id"`
	SideID string `json:"side_id"`
}

func slotTarget(r *http.Request) (time.Time, schedule.MealType, error) {
	date, err := schedule.ParseDate(r.PathValue("date"))
	if err != nil {
		return time.Time{}, "", err
	}
	mealType, err := schedule.ParseMealType(r.PathValue("meal"))
	if err != nil {
		return time.Time{}, "", err
	}
	return date, mealType, nil
}

func (s *Server) handleSetSlot(w http.ResponseWriter, r *http.Request) {
	date, mealType, err := slotTarget(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req slotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MainID == "" || req.SideID == "" {
		writeError(w, http.StatusBadRequest, "main_id and side_id are required")
		return
	}
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.planner.SetMeal(ctx, userFrom(r), id, date, mealType, req.MainID, req.SideID); err != nil {
		writeServiceError(w, err)
		return
	}
	saved, err := s.planner.LoadPlan(ctx, userFrom(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleRemoveSlot(w http.ResponseWriter, r *http.Request) {
	date, mealType, err := slotTarget(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.planner.RemoveMeal(r.Context(), userFrom(r), r.PathValue("id"), date, mealType); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type itemRequest struct {
	Title  string   `json:"title"`
	Notes  string   `json:"notes"`
	Role   string   `json:"role"`
	Effort int      `json:"effort"`
	Tags   []string `json:"tags"`
}

func (req itemRequest) toNewItem() catalog.NewItem {
	effort := req.Effort
	if effort == 0 {
		effort = catalog.DefaultEffort
	}
	return catalog.NewItem{
		Title:  req.Title,
		Notes:  req.Notes,
		Role:   catalog.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		Effort: effort,
		Tags:   req.Tags,
	}
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.FetchItems(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := s.items.Save(r.Context(), userFrom(r), req.toNewItem())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleImportItems(w http.ResponseWriter, r *http.Request) {
	rows, err := catalog.ParseCSV(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "no items found in csv")
		return
	}
	items, err := s.items.Import(r.Context(), userFrom(r), rows)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, items)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if !s.ownsItem(w, r, id) {
		return
	}
	var req itemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := s.items.Update(ctx, userFrom(r), id, req.toNewItem())
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.ownsItem(w, r, id) {
		return
	}
	if err := s.items.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.items.ListTags(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// ownsItem writes a 404 unless the item exists and belongs to the caller.
func (s *Server) ownsItem(w http.ResponseWriter, r *http.Request, id string) bool {
	item, err := s.items.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return false
	}
	if item.UserID != userFrom(r) {
		writeServiceError(w, catalog.ErrItemNotFound)
		return false
	}
	return true
}

type preferencesBody struct {
	RestrictedTags []string `json:"restricted_tags"`
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	tags, err := s.prefs.FetchRestrictions(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesBody{RestrictedTags: tags})
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesBody
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	if err := s.prefs.SetRestrictions(ctx, userFrom(r), req.RestrictedTags); err != nil {
		writeServiceError(w, err)
		return
	}
	tags, err := s.prefs.FetchRestrictions(ctx, userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesBody{RestrictedTags: tags})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrNotFound), errors.Is(err, catalog.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, planner.ErrPlanExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, planner.ErrInvalidRange), errors.Is(err, planner.ErrRoleMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("api: internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
