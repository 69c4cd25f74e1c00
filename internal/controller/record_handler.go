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
	"github.com/rabogan/esl-lesson-system/internal/service"
	"github.com/rabogan/esl-lesson-system/internal/timeutil"
	"go.uber.org/zap"
)

type recordService interface {
	Edit(ctx context.Context, recordID, teacherID int64, input service.EditInput) error
	Get(ctx context.Context, recordID int64, principal model.Principal) (*model.LessonRecord, error)
	History(ctx context.Context, principal model.Principal) ([]*model.LessonRecord, error)
	Outstanding(ctx context.Context, teacherID int64) ([]*model.LessonRecord, error)
	MostRecentFinalized(ctx context.Context, teacherID int64) (*model.LessonRecord, error)
}

type RecordHandler struct {
	records     recordService
	zones       zoneDirectory
	validate    *validator.Validate
	defaultZone string
	logger      *zap.Logger
}

func NewRecordHandler(records recordService, zones zoneDirectory, validate *validator.Validate, defaultZone string, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		records:     records,
		zones:       zones,
		validate:    validate,
		defaultZone: defaultZone,
		logger:      logger,
	}
}

type editRecordRequest struct {
	LessonSummary  string   `json:"lesson_summary"`
	Strengths      string   `json:"strengths"`
	AreasToImprove string   `json:"areas_to_improve"`
	NewWords       []string `json:"new_words" validate:"dive,max=100"`
	NewPhrases     []string `json:"new_phrases" validate:"dive,max=100"`
}

type recordResponse struct {
	ID             int64    `json:"id"`
	StudentID      int64    `json:"student_id"`
	TeacherID      int64    `json:"teacher_id"`
	SlotID         int64    `json:"lesson_slot_id"`
	LessonSummary  string   `json:"lesson_summary"`
	Strengths      string   `json:"strengths"`
	AreasToImprove string   `json:"areas_to_improve"`
	NewWords       []string `json:"new_words"`
	NewPhrases     []string `json:"new_phrases"`
	Finalized      bool     `json:"finalized"`
	LastEditTime   string   `json:"last_edit_time"`
	SlotStartTime  string   `json:"slot_start_time,omitempty"`
	Timezone       string   `json:"timezone"`
}

func newRecordResponse(record *model.LessonRecord, loc *time.Location) recordResponse {
	resp := recordResponse{
		ID:             record.ID,
		StudentID:      record.StudentID,
		TeacherID:      record.TeacherID,
		SlotID:         record.SlotID,
		LessonSummary:  record.LessonSummary,
		Strengths:      record.Strengths,
		AreasToImprove: record.AreasToImprove,
		NewWords:       record.NewWords,
		NewPhrases:     record.NewPhrases,
		Finalized:      record.Finalized(),
		LastEditTime:   timeutil.ToLocal(record.LastEditTime, loc).Format(timeLayout),
		Timezone:       loc.String(),
	}
	if resp.NewWords == nil {
		resp.NewWords = []string{}
	}
	if resp.NewPhrases == nil {
		resp.NewPhrases = []string{}
	}
	if !record.SlotStartTime.IsZero() {
		resp.SlotStartTime = timeutil.ToLocal(record.SlotStartTime, loc).Format(timeLayout)
	}
	return resp
}

func (h *RecordHandler) displayZone(r *http.Request, principal model.Principal) *time.Location {
	if zone := r.URL.Query().Get("timezone"); zone != "" {
		return timeutil.ZoneOrDefault(zone, h.defaultZone)
	}
	stored, err := h.zones.Timezone(r.Context(), principal)
	if err != nil {
		return timeutil.ZoneOrDefault("", h.defaultZone)
	}
	return timeutil.ZoneOrDefault(stored, h.defaultZone)
}

// Edit handles PUT /lesson-records/{recordID}.
func (h *RecordHandler) Edit(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	recordID, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "record id must be an integer")
		return
	}

	var req editRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	input := service.EditInput{
		LessonSummary:  req.LessonSummary,
		Strengths:      req.Strengths,
		AreasToImprove: req.AreasToImprove,
		NewWords:       req.NewWords,
		NewPhrases:     req.NewPhrases,
	}

	if err := h.records.Edit(r.Context(), recordID, principal.UserID, input); err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /lesson-records/{recordID}.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	recordID, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "record id must be an integer")
		return
	}

	record, err := h.records.Get(r.Context(), recordID, principal)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newRecordResponse(record, h.displayZone(r, principal)))
}

// History handles GET /lesson-records.
func (h *RecordHandler) History(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	records, err := h.records.History(r.Context(), principal)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	h.writeRecordList(w, r, principal, records)
}

// Outstanding handles GET /lesson-records/outstanding.
func (h *RecordHandler) Outstanding(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	records, err := h.records.Outstanding(r.Context(), principal.UserID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	h.writeRecordList(w, r, principal, records)
}

// MostRecentFinalized handles GET /lesson-records/latest.
func (h *RecordHandler) MostRecentFinalized(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	record, err := h.records.MostRecentFinalized(r.Context(), principal.UserID)
	if err != nil {
		respondServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newRecordResponse(record, h.displayZone(r, principal)))
}

func (h *RecordHandler) writeRecordList(w http.ResponseWriter, r *http.Request, principal model.Principal, records []*model.LessonRecord) {
	loc := h.displayZone(r, principal)
	resp := make([]recordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, newRecordResponse(record, loc))
	}
	writeJSON(w, http.StatusOK, resp)
}
