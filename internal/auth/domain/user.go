package domain

import "time"

// Role is the closed set of wiki role tags. found_father is the owner tier,
// keeper the moderator tier, player the ordinary member.
type Role string

const (
	RolePlayer      Role = "player"
	RoleKeeper      Role = "keeper"
	RoleFoundFather Role = "found_father"
)

// Valid reports whether r is one of the known role tags.
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RoleKeeper, RoleFoundFather:
		return true
	}
	return false
}

// AdminTier reports whether the role grants moderator-level access.
func (r Role) AdminTier() bool {
	return r == RoleKeeper || r == RoleFoundFather
}

type User struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	Role           Role

	// TwoFactorEnabled is true once the user has confirmed their first TOTP
	// code. A user with a secret but TwoFactorEnabled=false is mid-setup.
	TwoFactorEnabled bool
	OTPSecret        *string // base32 TOTP secret, nil until setup begins

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
