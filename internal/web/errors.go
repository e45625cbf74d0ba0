package web

// errors.go provides unified error response handling for the web layer.
//
// The policy follows the silent-degradation design of the core: storage
// corruption and stale cart entries never reach here at all. Only two
// failures are user-visible — the feed load and the order configuration —
// and both come out as warnings with a code the shopper can quote, not as
// raw technical errors.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/duken/storefront/internal/catalog"
	"github.com/duken/storefront/internal/logging"
	"github.com/duken/storefront/internal/order"
)

// userMessage is the user-facing rendition of an error: what happened, what
// to do about it, and a short code for support reference.
type userMessage struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// ErrorResponse is the JSON structure for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// mapError converts a technical error to a user-facing message.
// Typed domain errors map to specific codes; everything else falls through
// to the generic ERR000.
func mapError(err error) userMessage {
	var fetchErr *catalog.SourceFetchError
	if errors.As(err, &fetchErr) {
		return userMessage{
			Message: "Ошибка загрузки каталога",
			Action:  "Обновите страницу или попробуйте позже",
			Code:    "FEED001",
		}
	}

	if errors.Is(err, order.ErrEmptyCart) {
		return userMessage{
			Message: "Корзина пуста",
			Action:  "Добавьте товары перед оформлением заказа",
			Code:    "ORD001",
		}
	}

	var cfgErr *order.ConfigError
	if errors.As(err, &cfgErr) {
		return userMessage{
			Message: "Не настроен номер для отправки заказа",
			Action:  "Свяжитесь с магазином другим способом",
			Code:    "CFG001",
		}
	}

	if err == nil {
		return userMessage{}
	}
	return userMessage{
		Message: "Произошла непредвиденная ошибка",
		Action:  "Попробуйте ещё раз",
		Code:    "ERR000",
	}
}

// respondError logs the technical error with request context and writes the
// mapped user message as JSON.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := mapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)

	respondErrorJSON(w, msg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg userMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
