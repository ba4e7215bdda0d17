package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role is a fixed enumerated user role. The directory this core consumes
// stores roles loosely; they are normalized into this set on read.
type Role string

const (
	RoleStudent      Role = "student"
	RolePsychologist Role = "psychologist"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RolePsychologist, RoleAdmin:
		return true
	}
	return false
}

// RoleSet is a typed set of roles. Some upstream user records carry a single
// role, others a collection; both normalize into a RoleSet.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			s[r] = struct{}{}
		}
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// MarshalJSON renders the set as a stable array of role names.
func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *RoleSet) UnmarshalJSON(b []byte) error {
	var roles []Role
	if err := json.Unmarshal(b, &roles); err != nil {
		// tolerate a bare scalar role
		var one Role
		if err2 := json.Unmarshal(b, &one); err2 != nil {
			return err
		}
		roles = []Role{one}
	}
	*s = NewRoleSet(roles...)
	return nil
}

func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range []Role{RoleStudent, RolePsychologist, RoleAdmin} {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// User is a read-only projection of the external user directory: enough to
// enrich appointment listings and serve the clinician directory.
type User struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Roles     RoleSet   `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName is the participant name used to enrich listings.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}
