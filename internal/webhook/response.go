package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// User-facing response messages, kept from the original service.
const (
	msgMethodNotAllowed = "Только POST-запросы поддерживаются"
	msgInvalidJSON      = "Неверный формат JSON"
	msgBodyTooLarge     = "Слишком большое тело запроса"
	msgInvalidToken     = "Неверный токен"
	msgUnknownShape     = "Данные не распознаны"
	msgProcessed        = "Данные получены и обработаны"
	msgNoRuleMatched    = "Данные получены, но правило не найдено"
	msgNotFound         = "Не найдено"
	msgInternalError    = "Внутренняя ошибка сервера"
)

// statusResponse is the wire shape of error and plain-status replies.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// processedResponse is the wire shape of a successful webhook reply,
// carrying how many rules matched and how many deliveries went through.
type processedResponse struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	RulesCount     int    `json:"rules_count"`
	DeliveredCount int    `json:"delivered_count"`
}

func writeJSON(w http.ResponseWriter, httpStatus int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, httpStatus int, message string) {
	writeJSON(w, httpStatus, statusResponse{Status: "error", Message: message})
}

func writeProcessed(w http.ResponseWriter, message string, rulesCount, deliveredCount int) {
	writeJSON(w, http.StatusOK, processedResponse{
		Status:         "success",
		Message:        message,
		RulesCount:     rulesCount,
		DeliveredCount: deliveredCount,
	})
}
