package sleep

// ListVerdict is the access-list classification of a session key.
type ListVerdict int

const (
	ListNormal ListVerdict = iota
	ListWhitelisted
	ListBlacklisted
)

func (v ListVerdict) String() string {
	switch v {
	case ListWhitelisted:
		return "whitelisted"
	case ListBlacklisted:
		return "blacklisted"
	default:
		return "normal"
	}
}

// AccessList answers whitelist/blacklist membership for session keys.
// The whitelist wins when a key appears in both lists.
type AccessList struct {
	white map[string]struct{}
	black map[string]struct{}
}

// NewAccessList builds an AccessList from the configured key sets.
func NewAccessList(whitelist, blacklist []string) *AccessList {
	a := &AccessList{
		white: make(map[string]struct{}, len(whitelist)),
		black: make(map[string]struct{}, len(blacklist)),
	}
	for _, k := range whitelist {
		a.white[k] = struct{}{}
	}
	for _, k := range blacklist {
		a.black[k] = struct{}{}
	}
	return a
}

// Classify returns the list verdict for key. Pure lookup, no side effects.
func (a *AccessList) Classify(key string) ListVerdict {
	if _, ok := a.white[key]; ok {
		return ListWhitelisted
	}
	if _, ok := a.black[key]; ok {
		return ListBlacklisted
	}
	return ListNormal
}
