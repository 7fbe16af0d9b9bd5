package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fisokur/fisokur/internal/scanning"
)

// maxFormSize caps uploads at 50MB to handle high-resolution phone photos.
const maxFormSize = int64(50 << 20)

// textResult is the response body of the plain-text extraction endpoint.
type textResult struct {
	Text string `json:"text"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	setCORSHeaders(w)
	writeJSON(w, status, map[string]string{"error": message})
}

// readUpload pulls the uploaded image out of the multipart form and runs it
// through format preparation (PDF/HEIC to PNG) so the engines receive a
// directly embeddable image.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (scanning.Image, bool) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return scanning.Image{}, false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file was provided. Please choose a file to upload.")
		return scanning.Image{}, false
	}
	defer f.Close()

	if header.Size > maxFormSize {
		writeError(w, http.StatusBadRequest, "File is too large. Maximum size is 50MB.")
		return scanning.Image{}, false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return scanning.Image{}, false
	}

	img, err := scanning.PrepareImage(scanning.Image{Data: data, Name: header.Filename})
	if err != nil {
		slog.Error("Error preparing image", "error", err, "filename", header.Filename)
		writeError(w, http.StatusBadRequest, err.Error())
		return scanning.Image{}, false
	}

	return img, true
}

// writeExtractionError maps pipeline errors onto HTTP statuses: upstream
// trouble is a bad gateway, a missing credential is our misconfiguration.
func writeExtractionError(w http.ResponseWriter, err error) {
	var transportErr *scanning.TransportError
	if errors.As(err, &transportErr) {
		slog.Error("Upstream extraction call failed",
			"status", transportErr.StatusCode,
			"error", err,
		)
		writeError(w, http.StatusBadGateway, "Extraction failed: "+err.Error())
		return
	}

	slog.Error("Extraction failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Extraction failed: "+err.Error())
}

// handleExtractText runs free-form OCR on an uploaded image. An optional
// "instruction" form field overrides the default prompt.
func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	text, err := s.extractor.ExtractText(r.Context(), img, r.FormValue("instruction"))
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, textResult{Text: text})
}

// handleExtractReceipt extracts a typed receipt record from an uploaded
// image. The record is always fully populated; an unreadable image comes
// back as all defaults, not as an error.
func (s *Server) handleExtractReceipt(w http.ResponseWriter, r *http.Request) {
	img, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	rec, err := s.extractor.ExtractReceipt(r.Context(), img)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
