package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"rsc.io/pdf"

	"intervue/internal/models"
)

const (
	pdfContentType  = "application/pdf"
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	// Two or three capitalized words at the start of the document.
	nameRe = regexp.MustCompile(`^[A-Z][a-z]+([ \t][A-Z][a-z]+){1,2}`)
)

// FieldExtractor pulls candidate details out of resume files. Missing fields
// come back empty; only an unreadable file is an error.
type FieldExtractor struct{}

func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{}
}

func (e *FieldExtractor) Extract(data []byte, contentType string) (models.CandidateDetails, error) {
	var text string
	var err error

	switch contentType {
	case pdfContentType:
		text, err = extractPDFText(data)
	case docxContentType:
		text, err = extractDocxText(data)
	default:
		return models.CandidateDetails{}, fmt.Errorf("unsupported content type %q", contentType)
	}
	if err != nil {
		return models.CandidateDetails{}, err
	}

	return ExtractFields(text), nil
}

// ExtractFields applies the field heuristics to extracted resume text.
func ExtractFields(text string) models.CandidateDetails {
	text = strings.TrimSpace(text)
	return models.CandidateDetails{
		Name:  nameRe.FindString(text),
		Email: emailRe.FindString(text),
		Phone: strings.TrimSpace(phoneRe.FindString(text)),
	}
}

// extractPDFText joins the text items of every page. The pdf package panics
// on some malformed files, so the whole read is recovered.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			parts = append(parts, t.S)
		}
	}
	return strings.Join(parts, " "), nil
}

// docx is a zip archive; the document body lives in word/document.xml.
func extractDocxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open docx body: %w", err)
		}
		defer rc.Close()
		return collectXMLText(rc)
	}
	return "", fmt.Errorf("docx has no document body")
}

func collectXMLText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var parts []string
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}
		if data, ok := token.(xml.CharData); ok {
			if s := strings.TrimSpace(string(data)); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " "), nil
}
