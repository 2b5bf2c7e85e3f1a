package turn

import (
	"net"
	"time"
)

// permissionTimeout is the lifetime of an installed permission before it
// must be refreshed by another CreatePermission or outgoing send
// [RFC8656 §9].
const permissionTimeout = 5 * time.Minute

// Permission tracks that this allocation may relay traffic to/from one
// peer IP, grounded on the original implementation's
// allocation::permission::Permission (addr plus a refreshing lifetime).
type Permission struct {
	Addr      net.Addr
	expiresAt time.Time
}

func newPermission(addr net.Addr) *Permission {
	return &Permission{Addr: addr, expiresAt: time.Now().Add(permissionTimeout)}
}

func (p *Permission) refresh() {
	p.expiresAt = time.Now().Add(permissionTimeout)
}

func (p *Permission) expired(now time.Time) bool {
	return now.After(p.expiresAt)
}

// fingerprint is the permission table key: TURN permissions are
// IP-scoped, not address-scoped [RFC8656 §9].
func fingerprint(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
