package response

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

// Detail is the body of every non-validation error.
type Detail struct {
	Detail string `json:"detail"`
}

// FieldErrors maps a request field to the messages it failed with.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	JSON(w, statusCode, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Error(w http.ResponseWriter, statusCode int, detail string) {
	JSON(w, statusCode, Detail{Detail: detail})
}

func ValidationError(w http.ResponseWriter, errors FieldErrors) {
	JSON(w, http.StatusBadRequest, errors)
}

func BadRequest(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Invalid request body"
	}
	Error(w, http.StatusBadRequest, detail)
}

func Unauthorized(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Authentication credentials were not provided."
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	Error(w, http.StatusUnauthorized, detail)
}

func NotFound(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Not found."
	}
	Error(w, http.StatusNotFound, detail)
}

func MethodNotAllowed(w http.ResponseWriter, method string) {
	Error(w, http.StatusMethodNotAllowed, "Method \""+method+"\" not allowed.")
}

func Conflict(w http.ResponseWriter, detail string) {
	Error(w, http.StatusConflict, detail)
}

// TooManyRequests sets Retry-After in whole seconds, rounded up.
func TooManyRequests(w http.ResponseWriter, retryAfterSeconds int) {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	Error(w, http.StatusTooManyRequests, "Request was throttled.")
}

func InternalServerError(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, detail)
}
