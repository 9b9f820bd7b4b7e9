package website

import "strings"

// defaultBlockedHosts are social networks and email providers that never
// identify a lead's own business.
var defaultBlockedHosts = []string{
	"linkedin.com",
	"instagram.com",
	"facebook.com",
	"twitter.com",
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
}

// Blacklist is an immutable set of host substrings. A host is blocked when it
// contains any entry, so "mail.yahoo.com" is blocked by "yahoo.com".
type Blacklist struct {
	hosts []string
}

// DefaultBlacklist returns the built-in blacklist.
func DefaultBlacklist() Blacklist {
	return NewBlacklist()
}

// NewBlacklist returns the built-in blacklist extended with extra hosts.
// Entries are lowercased; blank and duplicate entries are ignored.
func NewBlacklist(extra ...string) Blacklist {
	seen := make(map[string]bool, len(defaultBlockedHosts)+len(extra))
	hosts := make([]string, 0, len(defaultBlockedHosts)+len(extra))
	for _, h := range append(append([]string{}, defaultBlockedHosts...), extra...) {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	return Blacklist{hosts: hosts}
}

// With returns a new Blacklist with extra hosts added. b is left unchanged.
func (b Blacklist) With(extra ...string) Blacklist {
	hosts := append(append([]string{}, b.hosts...), extra...)
	return NewBlacklist(hosts...)
}

// Hosts returns a copy of the entries.
func (b Blacklist) Hosts() []string {
	if len(b.hosts) == 0 {
		return append([]string{}, defaultBlockedHosts...)
	}
	return append([]string{}, b.hosts...)
}

// Blocks reports whether host contains any blacklist entry.
func (b Blacklist) Blocks(host string) bool {
	host = strings.ToLower(host)
	hosts := b.hosts
	if len(hosts) == 0 {
		// Zero value behaves like the default list.
		hosts = defaultBlockedHosts
	}
	for _, h := range hosts {
		if strings.Contains(host, h) {
			return true
		}
	}
	return false
}
