package dialogue

import "strings"

// Intent is the closed set of actions a turn can be routed to.
type Intent int

const (
	IntentNone Intent = iota
	IntentIdentify
	IntentSearch
	IntentDetail
	IntentSimilar
	IntentReset
)

var intentNames = map[Intent]string{
	IntentNone:     "none",
	IntentIdentify: "identify",
	IntentSearch:   "search",
	IntentDetail:   "detail",
	IntentSimilar:  "similar",
	IntentReset:    "reset",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return "unknown"
}

// ParseIntent maps a classifier action onto an Intent. Unknown actions are
// treated as out of domain.
func ParseIntent(action string) Intent {
	action = strings.ToLower(strings.TrimSpace(action))
	for intent, name := range intentNames {
		if name == action {
			return intent
		}
	}
	return IntentNone
}
