package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AnalizatorMP/sms-analizator.service/internal/database"
)

// Notifier sends a text message to an external chat. Implemented by the
// telegram package; faked in tests.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// DeliveryOutcome records the result of one delivery attempt.
type DeliveryOutcome struct {
	Rule database.Rule
	Err  error
}

// Delivered counts successful outcomes.
func Delivered(outcomes []DeliveryOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Dispatcher delivers notifications for matched rules. Deliveries are
// independent: a failure for one destination never aborts the others, and
// nothing is retried here, since a bad chat id or revoked bot permission
// does not get better on a second attempt.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher sending through the given notifier.
func NewDispatcher(notifier Notifier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		notifier: notifier,
		logger:   logger.With("component", "dispatcher"),
	}
}

// formatMessage renders the notification text for a forwarded SMS.
func formatMessage(event InboundEvent) string {
	return fmt.Sprintf("Пришло сообщение от %s\nНа номер: %s\nТекст: %s",
		event.CallerID, event.CalledNumber, event.Text)
}

// DeliverAll sends the event's notification to every matched rule's chat,
// concurrently, and returns one outcome per rule. All outcomes are
// collected before returning.
func (d *Dispatcher) DeliverAll(ctx context.Context, event InboundEvent, matched []database.Rule) []DeliveryOutcome {
	outcomes := make([]DeliveryOutcome, len(matched))
	text := formatMessage(event)

	var g errgroup.Group
	for i, rule := range matched {
		g.Go(func() error {
			err := d.notifier.SendMessage(ctx, rule.Chat.TelegramID, text)
			outcomes[i] = DeliveryOutcome{Rule: rule, Err: err}

			if err != nil {
				d.logger.ErrorContext(ctx, "Delivery failed",
					"rule_id", rule.ID,
					"chat_id", rule.Chat.TelegramID,
					"error", err)
			} else {
				d.logger.DebugContext(ctx, "Delivery succeeded",
					"rule_id", rule.ID,
					"chat_id", rule.Chat.TelegramID)
			}
			// Per-destination failures are recorded, never escalated.
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
