package webhook

import (
	"github.com/AnalizatorMP/sms-analizator.service/internal/database"
)

// AnySender is the reserved sender pattern meaning "any sender". The value
// is stored verbatim in the rules table by the web application.
const AnySender = "Любой отправитель"

// MatchRules returns every rule that applies to the event. A rule matches
// when its sender pattern equals the event's caller ID verbatim (or is the
// wildcard), and its origin number equals the number the SMS arrived on.
// Comparison is exact and case-sensitive; a rule without an origin number
// never matches. All matching rules are returned, there is no priority
// order among them.
func MatchRules(event InboundEvent, rules []database.Rule) []database.Rule {
	var matched []database.Rule
	for _, rule := range rules {
		if rule.OriginNumber == "" || rule.OriginNumber != event.CalledNumber {
			continue
		}
		if rule.Sender != event.CallerID && rule.Sender != AnySender {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}
