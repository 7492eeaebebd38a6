package tenants

import "strings"

// ProfileMarker is the reserved prefix on database names that routes a
// tenant to the profile backend mount and the profile view variant.
const ProfileMarker = "profile_"

// Kind is the tenant variant derived from the database name. It is the
// single branching rule for multi-tenant behavior: both the request
// router and the view resolver consume this classifier, never their own
// prefix checks.
type Kind int

const (
	KindStandard Kind = iota
	KindProfile
)

// Classify maps a database name to its Kind. The empty name classifies
// as standard; callers guard against unset selections themselves.
func Classify(name string) Kind {
	if strings.HasPrefix(name, ProfileMarker) {
		return KindProfile
	}
	return KindStandard
}

// Mount returns the backend path prefix for the kind.
func (k Kind) Mount() string {
	if k == KindProfile {
		return "/api"
	}
	return "/id"
}

func (k Kind) String() string {
	if k == KindProfile {
		return "profile"
	}
	return "standard"
}
