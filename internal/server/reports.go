package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"billboardwatch/internal/service"
	"billboardwatch/pkg/types"

	"github.com/alexedwards/flow"
)

const maxUploadBytes = 10 << 20

func (s *Service) handleListReports(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("actor not found in context")
		s.internalServerError(w, err)
		return
	}

	reports, err := s.reports.List(r.Context(), actor)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

// createReportForm is the multipart variant of the create payload: location
// and billboardDetails arrive as JSON strings next to the image file part.
type createReportForm struct {
	Location         string `form:"location"`
	BillboardDetails string `form:"billboardDetails"`
	DateObserved     string `form:"dateObserved"`
}

type createReportJSON struct {
	Location         types.Location         `json:"location"`
	BillboardDetails types.BillboardDetails `json:"billboardDetails"`
	DateObserved     string                 `json:"dateObserved"`
}

func (s *Service) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("actor not found in context")
		s.internalServerError(w, err)
		return
	}

	var input service.CreateReportInput

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		input, err = s.parseMultipartReport(w, r)
	case strings.HasPrefix(contentType, "application/json"), contentType == "":
		input, err = parseJSONReport(r)
	default:
		s.respondError(w, http.StatusUnsupportedMediaType, "Unsupported content type")
		return
	}
	if err != nil {
		var validationErr *types.ValidationError
		if errors.As(err, &validationErr) {
			s.respondError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if input.Image != nil {
		defer func() {
			if closer, ok := input.Image.Body.(interface{ Close() error }); ok {
				_ = closer.Close()
			}
		}()
	}

	report, err := s.reports.Create(r.Context(), actor, input)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{"report": report})
}

func (s *Service) parseMultipartReport(w http.ResponseWriter, r *http.Request) (service.CreateReportInput, error) {
	var input service.CreateReportInput

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return input, types.NewValidationError("File too large. Maximum size is 10MB.")
	}

	var fields createReportForm
	if err := decoder.Decode(&fields, url.Values(r.MultipartForm.Value)); err != nil {
		return input, types.NewValidationError("Invalid form fields")
	}

	if fields.Location != "" {
		if err := json.Unmarshal([]byte(fields.Location), &input.Location); err != nil {
			return input, types.NewValidationError("Invalid location JSON")
		}
	}

	if fields.BillboardDetails != "" {
		if err := json.Unmarshal([]byte(fields.BillboardDetails), &input.BillboardDetails); err != nil {
			return input, types.NewValidationError("Invalid billboardDetails JSON")
		}
	}

	observed, err := parseDateObserved(fields.DateObserved)
	if err != nil {
		return input, err
	}
	input.DateObserved = observed

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil
		}
		return input, types.NewValidationError("Invalid image upload")
	}

	imageType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(imageType, "image/") {
		_ = file.Close()
		return input, types.NewValidationError("Only image files are allowed")
	}

	input.Image = &service.ImageUpload{
		FileName:    header.Filename,
		ContentType: imageType,
		Body:        file,
	}

	return input, nil
}

func parseJSONReport(r *http.Request) (service.CreateReportInput, error) {
	var input service.CreateReportInput

	var body createReportJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return input, types.NewValidationError("Invalid JSON body")
	}

	input.Location = body.Location
	input.BillboardDetails = body.BillboardDetails

	observed, err := parseDateObserved(body.DateObserved)
	if err != nil {
		return input, err
	}
	input.DateObserved = observed

	return input, nil
}

func parseDateObserved(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	observed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, types.NewValidationError("dateObserved must be an RFC 3339 timestamp")
	}

	return &observed, nil
}

func (s *Service) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("actor not found in context")
		s.internalServerError(w, err)
		return
	}

	reportID := flow.Param(r.Context(), "id")

	var body struct {
		Status            string `json:"status"`
		VerificationNotes string `json:"verificationNotes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	report, err := s.reports.UpdateStatus(r.Context(), actor, reportID, types.ReportStatus(body.Status), body.VerificationNotes)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"report": report})
}

func (s *Service) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("actor not found in context")
		s.internalServerError(w, err)
		return
	}

	reportID := flow.Param(r.Context(), "id")

	if err := s.reports.Delete(r.Context(), actor, reportID); err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"message": "Report deleted successfully"})
}
