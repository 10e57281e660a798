package archivepipeline

import "net/http"

// BadRequest covers a missing or malformed repo parameter. No resources are
// acquired before this is returned (spec §7).
type BadRequest struct {
	Message string
}

func (e *BadRequest) Error() string { return e.Message }

// EmptyRepository means the registry's tree endpoint returned zero file
// entries (spec §7).
type EmptyRepository struct{}

func (e *EmptyRepository) Error() string { return "repository has no files" }

// SinkFailure wraps a fatal multipart create/upload/complete error; Run also
// uses it for a body read error mid-file and for a failed torrent upload.
// Unless the archive upload has already completed (the torrent-upload case),
// the multipart upload is aborted before Run returns.
type SinkFailure struct {
	Cause error
}

func (e *SinkFailure) Error() string { return "object store failure: " + e.Cause.Error() }
func (e *SinkFailure) Unwrap() error { return e.Cause }

// InvariantViolation means a piece-count or url-list check (spec §6) failed
// just before emission.
type InvariantViolation struct {
	Cause error
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.Cause.Error() }
func (e *InvariantViolation) Unwrap() error { return e.Cause }

// StatusCode maps a pipeline error to the HTTP status spec §6 requires.
// Unrecognized errors (including registry.ListFailure, which the caller
// wraps before it reaches here) map to 500.
func StatusCode(err error) int {
	switch err.(type) {
	case *BadRequest:
		return http.StatusBadRequest
	case *EmptyRepository:
		return http.StatusNotFound
	case *ListFailure:
		return http.StatusBadGateway
	case *SinkFailure, *InvariantViolation:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ListFailure is surfaced by Pipeline.Run when the registry's tree endpoint
// fails; Run wraps the registry error in it so StatusCode maps it to 502.
type ListFailure struct {
	Cause error
}

func (e *ListFailure) Error() string { return "registry list failed: " + e.Cause.Error() }
func (e *ListFailure) Unwrap() error { return e.Cause }
