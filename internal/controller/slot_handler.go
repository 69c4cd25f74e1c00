package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rabogan/esl-lesson-system/internal/model"
	"github.com/rabogan/esl-lesson-system/internal/timeutil"
	"go.uber.org/zap"
)

type slotService interface {
	Open(ctx context.Context, teacherID int64, localStart, localEnd time.Time, zone string) (int64, error)
	Close(ctx context.Context, slotID, teacherID int64) error
	ListAvailable(ctx context.Context, teacherID *int64, weekOffset int, zone string) ([]*model.LessonSlot, timeutil.Window, error)
	TeacherWeek(ctx context.Context, teacherID int64, weekOffset int) ([]*model.LessonSlot, timeutil.Window, error)
}

// zoneDirectory yields the stored zone of the requester, used to render
// instants back into local time.
type zoneDirectory interface {
	Timezone(ctx context.Context, principal model.Principal) (string, error)
}

type SlotHandler struct {
	slots       slotService
	zones       zoneDirectory
	validate    *validator.Validate
	defaultZone string
	logger      *zap.Logger
}

func NewSlotHandler(slots slotService, zones zoneDirectory, validate *validator.Validate, defaultZone string, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{
		slots:       slots,
		zones:       zones,
		validate:    validate,
		defaultZone: defaultZone,
		logger:      logger,
	}
}

type openSlotRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Timezone  string `json:"timezone" validate:"required"`
}

type slotResponse struct {
	ID        int64  `json:"id"`
	TeacherID int64  `json:"teacher_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
	Booked    bool   `json:"booked"`
}

type slotListResponse struct {
	Timezone  string         `json:"timezone"`
	WeekStart string         `json:"week_start"`
	WeekEnd   string         `json:"week_end"`
	Slots     []slotResponse `json:"slots"`
}

func newSlotResponse(slot *model.LessonSlot, loc *time.Location) slotResponse {
	return slotResponse{
		ID:        slot.ID,
		TeacherID: slot.TeacherID,
		StartTime: timeutil.ToLocal(slot.StartTime, loc).Format(timeLayout),
		EndTime:   timeutil.ToLocal(slot.EndTime, loc).Format(timeLayout),
		Timezone:  loc.String(),
		Booked:    slot.Booked,
	}
}

func newSlotListResponse(slots []*model.LessonSlot, window timeutil.Window, loc *time.Location) slotListResponse {
	resp := slotListResponse{
		Timezone:  loc.String(),
		WeekStart: timeutil.ToLocal(window.Start, loc).Format(timeLayout),
		WeekEnd:   timeutil.ToLocal(window.End, loc).Format(timeLayout),
		Slots:     make([]slotResponse, 0, len(slots)),
	}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, newSlotResponse(slot, loc))
	}
	return resp
}

// displayZone resolves the zone used to render a response: an explicit
// query override, then the requester's stored zone, then the configured
// default. Write paths never use this fallback.
func (h *SlotHandler) displayZone(r *http.Request, principal model.Principal) *time.Location {
	if zone := r.URL.Query().Get("timezone"); zone != "" {
		return timeutil.ZoneOrDefault(zone, h.defaultZone)
	}
	stored, err := h.zones.Timezone(r.Context(), principal)
	if err != nil {
		return timeutil.ZoneOrDefault("", h.defaultZone)
	}
	return timeutil.ZoneOrDefault(stored, h.defaultZone)
}

// ListAvailable handles GET /slots.
func (h *SlotHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var teacherID *int64
	if raw := r.URL.Query().Get("teacher_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "teacher_id must be an integer")
			return
		}
		teacherID = &id
	}

	weekOffset, ok := parseWeekOffset(w, r)
	if !ok {
		return
	}

	loc := h.displayZone(r, principal)

	slots, window, err := h.slots.ListAvailable(r.Context(), teacherID, weekOffset, loc.String())
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSlotListResponse(slots, window, loc))
}

// TeacherWeek handles GET /schedule for the teacher's own calendar.
func (h *SlotHandler) TeacherWeek(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	weekOffset, ok := parseWeekOffset(w, r)
	if !ok {
		return
	}

	slots, window, err := h.slots.TeacherWeek(r.Context(), principal.UserID, weekOffset)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	loc := h.displayZone(r, principal)
	writeJSON(w, http.StatusOK, newSlotListResponse(slots, window, loc))
}

// Open handles POST /slots.
func (h *SlotHandler) Open(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var req openSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	start, err := time.Parse(timeLayout, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "start_time must match "+timeLayout)
		return
	}
	end, err := time.Parse(timeLayout, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "end_time must match "+timeLayout)
		return
	}

	slotID, err := h.slots.Open(r.Context(), principal.UserID, start, end, req.Timezone)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"slot_id": slotID})
}

// Close handles DELETE /slots/{slotID}.
func (h *SlotHandler) Close(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	slotID, err := strconv.ParseInt(chi.URLParam(r, "slotID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "slot id must be an integer")
		return
	}

	if err := h.slots.Close(r.Context(), slotID, principal.UserID); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseWeekOffset(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("week_offset")
	if raw == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "week_offset must be an integer")
		return 0, false
	}
	return offset, true
}
