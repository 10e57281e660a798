package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/omnicloud/archiver/internal/archivepipeline"
)

// HealthResponse is the /healthz response body.
type HealthResponse struct {
	Status  string    `json:"status"`
	Time    time.Time `json:"time"`
	Version string    `json:"version"`
}

// ErrorResponse is the body returned for any non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ArchiveResponse is returned on a successful archive run.
type ArchiveResponse struct {
	ArchiveURL  string `json:"archive_url"`
	TorrentURL  string `json:"torrent_url"`
	ArchiveSize int64  `json:"archive_size_bytes"`
	FileCount   int    `json:"file_count"`
	SkippedGet  int    `json:"skipped_files,omitempty"`
	InfoHash    string `json:"info_hash"`
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Time:    time.Now(),
		Version: s.version,
	})
}

// handleArchive implements spec §6: GET /?repo=<owner>/<name>[&rev=<rev>].
// It runs the archive pipeline synchronously and reports the resulting
// object keys; the response status follows the spec's error taxonomy via
// archivepipeline.StatusCode.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	repo := r.URL.Query().Get("repo")
	if repo == "" {
		respondError(w, http.StatusBadRequest, "missing repo parameter", "expected ?repo=<owner>/<name>")
		return
	}

	rev := r.URL.Query().Get("rev")
	if rev == "" {
		rev = "main"
	}

	result, err := s.pipeline.Run(r.Context(), repo, rev)
	if err != nil {
		respondError(w, archivepipeline.StatusCode(err), "archive failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ArchiveResponse{
		ArchiveURL:  result.ArchiveKey,
		TorrentURL:  result.TorrentKey,
		ArchiveSize: result.ArchiveSize,
		FileCount:   result.FileCount,
		SkippedGet:  result.SkippedGet,
		InfoHash:    result.InfoHash,
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg string, message string) {
	respondJSON(w, status, ErrorResponse{Error: errMsg, Message: message})
}
