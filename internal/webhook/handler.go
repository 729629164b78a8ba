package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/AnalizatorMP/sms-analizator.service/internal/database"
)

// maxRequestBody caps how much of an inbound webhook body is buffered.
// Provider payloads are a few hundred bytes; anything near the cap is junk.
const maxRequestBody = 1 << 20

// Handler is the HTTP ingress of the relay pipeline.
type Handler struct {
	store      database.Store
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(store database.Store, dispatcher *Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.With("component", "webhook"),
	}
}

// HandleWebhook processes POST /webhook/{token}. The request terminates at
// the first applicable branch: undecodable body (400), unknown token (403),
// unrecognized payload shape (400), then rule matching and delivery (200
// with matched and delivered counts). Store faults surface as 500.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.WarnContext(ctx, "Rejected oversized webhook body", "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		log.ErrorContext(ctx, "Failed to read request body", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	// The body must at least decode before any datastore work happens.
	if !json.Valid(body) {
		log.WarnContext(ctx, "Rejected webhook with invalid JSON body")
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	token := chi.URLParam(r, "token")
	account, err := h.store.AccountByToken(ctx, token)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			log.WarnContext(ctx, "Rejected webhook with unknown token")
			writeError(w, http.StatusForbidden, msgInvalidToken)
			return
		}
		log.ErrorContext(ctx, "Failed to resolve account", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	log = log.With("account_id", account.ID)

	event, err := ExtractEvent(body)
	if err != nil {
		log.WarnContext(ctx, "Rejected webhook with unrecognized payload shape", "error", err)
		writeError(w, http.StatusBadRequest, msgUnknownShape)
		return
	}

	rules, err := h.store.RulesForAccount(ctx, account.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load rules", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	matched := MatchRules(*event, rules)
	if len(matched) == 0 {
		log.InfoContext(ctx, "No rule matched inbound event",
			"caller_id", event.CallerID,
			"caller_name", event.CallerName,
			"called_number", event.CalledNumber,
			"rules_total", len(rules))
		writeProcessed(w, msgNoRuleMatched, 0, 0)
		return
	}

	outcomes := h.dispatcher.DeliverAll(ctx, *event, matched)
	delivered := Delivered(outcomes)

	log.InfoContext(ctx, "Inbound event processed",
		"caller_id", event.CallerID,
		"caller_name", event.CallerName,
		"called_number", event.CalledNumber,
		"matched", len(matched),
		"delivered", delivered)
	writeProcessed(w, msgProcessed, len(matched), delivered)
}
