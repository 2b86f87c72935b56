package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/antedotal/waitlist-manager/internal/intake"
)

// The response envelope mirrors the signup form's contract: a success
// carries data, a rejection carries an error with a code the form branches
// on for messaging.

type successBody struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type errorBody struct {
	Code    intake.Code `json:"code"`
	Message string      `json:"message"`
}

type envelope struct {
	Data  *successBody `json:"data"`
	Error *errorBody   `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, email, message string) {
	writeJSON(w, status, envelope{Data: &successBody{Email: email, Message: message}})
}

func writeRejection(w http.ResponseWriter, rej *intake.Rejection) {
	writeJSON(w, statusForCode(rej.Code), envelope{Error: &errorBody{
		Code:    rej.Code,
		Message: rej.Message,
	}})
}

func statusForCode(code intake.Code) int {
	switch code {
	case intake.CodeDuplicateEmail:
		return http.StatusConflict
	case intake.CodeDatabaseError, intake.CodeUnexpectedError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
