package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"intervue/internal/middleware"
	"intervue/internal/models"
	"intervue/internal/session"
	"intervue/internal/utils"
)

const maxResumeBytes = 10 << 20 // 10 MiB

type SessionHandler struct {
	hub    *session.Hub
	logger *zap.Logger
}

func NewSessionHandler(hub *session.Hub, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		hub:    hub,
		logger: logger,
	}
}

func (h *SessionHandler) manager(w http.ResponseWriter, r *http.Request) (*session.Manager, bool) {
	candidateID := middleware.CandidateID(r)
	if candidateID == "" {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "unauthorized",
			Message: "Missing candidate identity",
		})
		return nil, false
	}

	mgr, err := h.hub.Get(r.Context(), candidateID)
	if err != nil {
		h.logger.Error("failed to load session", zap.String("candidate", candidateID), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_load_error",
			Message: "Failed to load session state",
		})
		return nil, false
	}
	return mgr, true
}

func (h *SessionHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}
	utils.JSON(w, http.StatusOK, mgr.Snapshot())
}

// UploadResumeHandler accepts the resume file and runs the parsing leg.
func (h *SessionHandler) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_upload",
			Message: "Expected a multipart upload with a file field",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "missing_file",
			Message: "A resume file is required",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeBytes))
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "unreadable_upload",
			Message: "Failed to read the uploaded file",
		})
		return
	}

	resp, err := mgr.AcceptResumeFile(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) ConfirmDetailsHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.DetailsRequest](r)

	resp, err := mgr.ConfirmDetails(r.Context(), models.CandidateDetails{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}

	resp, err := mgr.Start(r.Context())
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) DraftHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.DraftRequest](r)

	if err := mgr.UpdateDraft(req.Text); err != nil {
		h.writeSessionError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, mgr.Snapshot())
}

func (h *SessionHandler) SubmitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.AnswerRequest](r)

	resp, err := mgr.SubmitAnswer(r.Context(), req.Answer)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) ResumeDecisionHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}
	req := middleware.GetValidatedRequest[*models.ResumeDecisionRequest](r)

	resp, err := mgr.ResumeDecision(r.Context(), req.Decision)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	mgr, ok := h.manager(w, r)
	if !ok {
		return
	}

	resp, err := mgr.Reset(r.Context())
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// writeSessionError maps state machine errors onto the uniform error shape.
func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnsupportedFileType):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_file_type",
			Message: "Please upload a PDF or DOCX file.",
		})
	case errors.Is(err, session.ErrResumeUnreadable):
		utils.JSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Code:    "unreadable_resume",
			Message: "Could not read the resume. Please try another file.",
		})
	case errors.Is(err, session.ErrResumeRequired):
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "resume_required",
			Message: "Please upload your resume to continue.",
		})
	case errors.Is(err, session.ErrEvaluationInFlight):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "evaluation_in_flight",
			Message: "The current answer is already being evaluated.",
		})
	case errors.Is(err, session.ErrResumeDecisionPending):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "resume_decision_pending",
			Message: "Choose to resume or discard the interview in progress first.",
		})
	case errors.Is(err, session.ErrNoResumeDecision):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "no_resume_decision",
			Message: "There is no interview waiting for a resume decision.",
		})
	case errors.Is(err, models.ErrInvalidTransition), errors.Is(err, models.ErrNoCurrentQuestion),
		errors.Is(err, models.ErrQuestionsAssigned), errors.Is(err, models.ErrAlreadyCompleted):
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code:    "invalid_state",
			Message: err.Error(),
		})
	default:
		h.logger.Error("session operation failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "session_error",
			Message: "The session operation failed",
		})
	}
}
