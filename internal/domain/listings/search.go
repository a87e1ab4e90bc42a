package listings

import "strings"

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 200
)

// SearchParams describe the supported listing filters. Location matches as a
// case-insensitive substring; an empty location matches everything.
// OldestFirst orders results by creation time ascending, the order hosts see
// their own listings in.
type SearchParams struct {
	Host        HostID
	Location    string
	Limit       int
	Offset      int
	OldestFirst bool
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Location = strings.TrimSpace(strings.ToLower(normalized.Location))
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	return normalized
}

// MatchesLocation reports whether the listing satisfies the normalized
// location filter.
func (l *Listing) MatchesLocation(needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Location), needle)
}
