package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the uniform wrapper for every non-binary API response.
// Status is "success" for 2xx responses and the error kind otherwise.
type Envelope struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Length  *int   `json:"length,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

var debugErrors bool

// SetDebugErrors controls whether 500 responses echo internal error
// detail. Enabled only outside production.
func SetDebugErrors(enabled bool) {
	debugErrors = enabled
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(env)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Status: "success", Data: data})
}

// OKList writes a success envelope for collection responses, carrying
// the element count alongside the data.
func OKList(w http.ResponseWriter, data any, length int) {
	writeJSON(w, http.StatusOK, Envelope{
		Status: "success",
		Length: &length,
		Data:   data,
	})
}

func OKWithToken(w http.ResponseWriter, token string, data any) {
	writeJSON(w, http.StatusOK, Envelope{
		Status: "success",
		Token:  token,
		Data:   data,
	})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, Envelope{Status: "success", Data: data})
}

func CreatedWithToken(w http.ResponseWriter, token string, data any) {
	writeJSON(w, http.StatusCreated, Envelope{
		Status: "success",
		Token:  token,
		Data:   data,
	})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "error", err)

	appErr := InternalError(err)
	if debugErrors && err != nil {
		appErr.Message = err.Error()
	}

	JSONError(w, appErr)
}

// JSONError translates an error into the envelope. Non-AppError values
// fall back to a generic 500 without leaking detail.
func JSONError(w http.ResponseWriter, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		InternalServerError(w, err)
		return
	}

	writeJSON(w, appErr.Status, Envelope{
		Status:  appErr.Kind,
		Message: appErr.Message,
	})
}
