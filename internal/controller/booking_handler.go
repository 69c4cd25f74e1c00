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

type bookingService interface {
	Book(ctx context.Context, studentID, slotID int64) (*model.Booking, error)
	Cancel(ctx context.Context, bookingID, studentID int64) error
	StudentUpcoming(ctx context.Context, studentID int64) ([]*model.BookedLesson, error)
	TeacherUpcoming(ctx context.Context, teacherID int64) ([]*model.BookedLesson, error)
}

type BookingHandler struct {
	bookings    bookingService
	zones       zoneDirectory
	validate    *validator.Validate
	defaultZone string
	logger      *zap.Logger
}

func NewBookingHandler(bookings bookingService, zones zoneDirectory, validate *validator.Validate, defaultZone string, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookings:    bookings,
		zones:       zones,
		validate:    validate,
		defaultZone: defaultZone,
		logger:      logger,
	}
}

type bookRequest struct {
	SlotID int64 `json:"slot_id" validate:"required,gt=0"`
}

type bookResponse struct {
	BookingID      int64        `json:"booking_id"`
	LessonRecordID int64        `json:"lesson_record_id"`
	Slot           slotResponse `json:"slot"`
}

type bookedLessonResponse struct {
	BookingID      int64  `json:"booking_id"`
	SlotID         int64  `json:"slot_id"`
	StudentID      int64  `json:"student_id"`
	TeacherID      int64  `json:"teacher_id"`
	LessonRecordID int64  `json:"lesson_record_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Timezone       string `json:"timezone"`
}

func (h *BookingHandler) displayZone(r *http.Request, principal model.Principal) *time.Location {
	if zone := r.URL.Query().Get("timezone"); zone != "" {
		return timeutil.ZoneOrDefault(zone, h.defaultZone)
	}
	stored, err := h.zones.Timezone(r.Context(), principal)
	if err != nil {
		return timeutil.ZoneOrDefault("", h.defaultZone)
	}
	return timeutil.ZoneOrDefault(stored, h.defaultZone)
}

// Book handles POST /bookings.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	booking, err := h.bookings.Book(r.Context(), principal.UserID, req.SlotID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	loc := h.displayZone(r, principal)
	resp := bookResponse{
		BookingID:      booking.ID,
		LessonRecordID: booking.LessonRecordID,
	}
	if booking.Slot != nil {
		resp.Slot = newSlotResponse(booking.Slot, loc)
		resp.Slot.Booked = true
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Cancel handles DELETE /bookings/{bookingID}.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "booking id must be an integer")
		return
	}

	if err := h.bookings.Cancel(r.Context(), bookingID, principal.UserID); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Upcoming handles GET /bookings/upcoming for either role.
func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var (
		lessons []*model.BookedLesson
		err     error
	)
	if principal.IsTeacher() {
		lessons, err = h.bookings.TeacherUpcoming(r.Context(), principal.UserID)
	} else {
		lessons, err = h.bookings.StudentUpcoming(r.Context(), principal.UserID)
	}
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	loc := h.displayZone(r, principal)
	resp := make([]bookedLessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		resp = append(resp, bookedLessonResponse{
			BookingID:      lesson.BookingID,
			SlotID:         lesson.SlotID,
			StudentID:      lesson.StudentID,
			TeacherID:      lesson.TeacherID,
			LessonRecordID: lesson.LessonRecordID,
			StartTime:      timeutil.ToLocal(lesson.StartTime, loc).Format(timeLayout),
			EndTime:        timeutil.ToLocal(lesson.EndTime, loc).Format(timeLayout),
			Timezone:       loc.String(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
