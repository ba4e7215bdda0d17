package model

import (
	"encoding/json"
	"testing"
)

func TestRoleSetJSON(t *testing.T) {
	s := NewRoleSet(RolePsychologist, RoleStudent)

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["student","psychologist"]` {
		t.Errorf("unexpected marshal output: %s", b)
	}

	var back RoleSet
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Has(RoleStudent) || !back.Has(RolePsychologist) {
		t.Error("round trip lost roles")
	}
}

func TestRoleSetUnmarshalScalar(t *testing.T) {
	// Some upstream records carry a single role instead of an array.
	var s RoleSet
	if err := json.Unmarshal([]byte(`"psychologist"`), &s); err != nil {
		t.Fatalf("unmarshal scalar: %v", err)
	}
	if !s.Has(RolePsychologist) {
		t.Error("scalar role not normalized into set")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"full name", User{FirstName: "Sara", LastName: "Moradi"}, "Sara Moradi"},
		{"first only", User{FirstName: "Sara"}, "Sara"},
		{"last only", User{LastName: "Moradi"}, "Moradi"},
		{"email fallback", User{Email: "sara@example.edu"}, "sara@example.edu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
