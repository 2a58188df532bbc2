package models

import (
	"strings"
)

// Accepted resume upload formats.
var SupportedResumeTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

func SupportedResumeTypesList() []string {
	return []string{"pdf", "docx"}
}

type DetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// implements the Validator interface
func (r *DetailsRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ErrorResponse{
			Code:    "missing_name",
			Message: "Name field is required",
		}
	}

	email := strings.TrimSpace(r.Email)
	if email == "" {
		return &ErrorResponse{
			Code:    "missing_email",
			Message: "Email field is required",
		}
	}
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return &ErrorResponse{
			Code:    "invalid_email",
			Message: "Email address is not valid",
		}
	}

	return nil
}

type AnswerRequest struct {
	// Answer may be empty: a timeout submission records whatever was typed.
	Answer string `json:"answer"`
}

func (r *AnswerRequest) Validate() error {
	return nil
}

type DraftRequest struct {
	Text string `json:"text"`
}

func (r *DraftRequest) Validate() error {
	return nil
}

const (
	DecisionResume  = "resume"
	DecisionDiscard = "discard"
)

type ResumeDecisionRequest struct {
	Decision string `json:"decision"`
}

func (r *ResumeDecisionRequest) Validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Decision)) {
	case DecisionResume, DecisionDiscard:
		return nil
	}
	return &ErrorResponse{
		Code:    "invalid_decision",
		Message: "Decision must be one of: resume, discard",
	}
}
