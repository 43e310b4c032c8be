package models

import "strings"

// Filter selects which tasks a listing returns
type Filter string

const (
	FilterAvailable Filter = "available"
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterDeferred  Filter = "deferred"
	FilterFlagged   Filter = "flagged"
	FilterDueSoon   Filter = "due_soon"
	FilterInbox     Filter = "inbox"
)

// CompletedLimit caps the completed listing.
const CompletedLimit = 100

// Filters lists the recognized filter keys in display order
var Filters = []Filter{FilterAvailable, FilterAll, FilterCompleted, FilterDeferred, FilterFlagged, FilterDueSoon, FilterInbox}

// ParseFilter maps a filter key to a Filter. Empty and unrecognized keys fall back to FilterAvailable;
// the second result reports whether the key was recognized.
func ParseFilter(key string) (Filter, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return FilterAvailable, true
	}
	for _, f := range Filters {
		if string(f) == key {
			return f, true
		}
	}
	return FilterAvailable, false
}
