package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"intervue/internal/models"
	"intervue/internal/store"
	"intervue/internal/utils"
)

type RecordsHandler struct {
	records *store.RecordRepository
	logger  *zap.Logger
}

func NewRecordsHandler(records *store.RecordRepository, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{
		records: records,
		logger:  logger,
	}
}

// ListRecordsHandler returns completed interviews, newest first. An optional
// ?search= matches candidate name or email case-insensitively.
func (h *RecordsHandler) ListRecordsHandler(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	records, err := h.records.List(r.Context(), search)
	if err != nil {
		h.logger.Error("failed to list interview records", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "records_error",
			Message: "Failed to list interview records",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.RecordListResponse{
		Records: records,
		Total:   len(records),
	})
}

func (h *RecordsHandler) GetRecordHandler(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordId")

	record, err := h.records.GetByRecordID(r.Context(), recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code:    "record_not_found",
				Message: "No interview record with that id",
			})
			return
		}
		h.logger.Error("failed to load interview record", zap.String("recordId", recordID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "records_error",
			Message: "Failed to load the interview record",
		})
		return
	}

	transcript, err := models.DecodeTranscript(record.Transcript)
	if err != nil {
		h.logger.Error("stored transcript is corrupt", zap.String("recordId", recordID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "transcript_error",
			Message: "Stored transcript could not be decoded",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.RecordDetailResponse{
		Record:     *record,
		Transcript: transcript,
	})
}
