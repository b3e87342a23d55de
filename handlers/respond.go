package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"scrapbookAPI/internal/scrapbook"
)

const maxBodyBytes = 5 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

// respondWithServiceError maps the error taxonomy onto HTTP statuses.
// Anything unclassified is logged under op and answered with a neutral 500.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	var ve *scrapbook.ValidationError
	var up *scrapbook.UpstreamError
	switch {
	case errors.As(err, &ve):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Code: "validation", Field: ve.Field})
	case errors.Is(err, scrapbook.ErrUnauthorized):
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: "User not authenticated", Code: "unauthorized"})
	case errors.Is(err, scrapbook.ErrForbidden):
		respondWithJSON(w, http.StatusForbidden, errorResponse{Error: "You do not have permission to do that", Code: "forbidden"})
	case errors.Is(err, scrapbook.ErrNotFound):
		respondWithJSON(w, http.StatusNotFound, errorResponse{Error: "Not found or private", Code: "not_found"})
	case errors.Is(err, scrapbook.ErrConflict):
		respondWithJSON(w, http.StatusConflict, errorResponse{Error: conflictMessage(err), Code: "conflict"})
	case errors.As(err, &up):
		log.Printf("%s: %v", op, err)
		respondWithJSON(w, up.HTTPStatus(), errorResponse{Error: fmt.Sprintf("%s request failed", up.Service), Code: "upstream"})
	default:
		log.Printf("%s: %v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// conflictMessage drops the wrapped sentinel so the client sees what clashed.
func conflictMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+scrapbook.ErrConflict.Error())
	if msg == "" || msg == scrapbook.ErrConflict.Error() {
		return "Already exists"
	}
	return msg
}

// decodeJSON reads a JSON body into dst. Malformed bodies are validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &scrapbook.ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &scrapbook.ValidationError{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &scrapbook.ValidationError{Field: key, Message: "must be a number"}
	}
	return f, nil
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &scrapbook.ValidationError{Field: key, Message: "must be true or false"}
	}
	return b, nil
}
