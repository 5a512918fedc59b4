package api

import (
	"encoding/json"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Code    string `json:"errcode"`
	Message string `json:"error"`
}

func InternalServerError(message string) *ErrorResponse {
	return &ErrorResponse{"unknown", message}
}

func MethodNotAllowed() *ErrorResponse {
	return &ErrorResponse{"method_not_allowed", "Method Not Allowed"}
}

func RateLimitReached() *ErrorResponse {
	return &ErrorResponse{"rate_limited", "Rate Limited"}
}

func NotFoundError() *ErrorResponse {
	return &ErrorResponse{"not_found", "Not found"}
}

func RequestTooLarge(message string) *ErrorResponse {
	return &ErrorResponse{"too_large", message}
}

func BadRequest(message string) *ErrorResponse {
	return &ErrorResponse{"bad_request", message}
}

func respondJson(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	b, err := json.Marshal(payload)
	if err != nil {
		sentry.CaptureException(err)
		logrus.Error("Error marshalling response: ", err)
		return
	}
	_, _ = w.Write(b)
}
