package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/model"
	"github.com/psyconnect/psyconnect_backend/internal/store"
)

type fakeStore struct {
	users []*model.User
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListByRole(_ context.Context, role model.Role) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if u.Roles.Has(role) {
			out = append(out, u)
		}
	}
	return out, nil
}

func TestListPsychologists(t *testing.T) {
	psy := &model.User{ID: uuid.New(), FirstName: "Sara", LastName: "Meyer", Roles: model.NewRoleSet(model.RolePsychologist)}
	student := &model.User{ID: uuid.New(), FirstName: "Jo", Roles: model.NewRoleSet(model.RoleStudent)}

	svc := New(&fakeStore{users: []*model.User{psy, student}})
	got, err := svc.ListPsychologists(context.Background())
	if err != nil {
		t.Fatalf("ListPsychologists() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != psy.ID {
		t.Errorf("ListPsychologists() = %v, want just %s", got, psy.ID)
	}
}

func TestListPsychologistsEmpty(t *testing.T) {
	svc := New(&fakeStore{})
	if _, err := svc.ListPsychologists(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ListPsychologists() error = %v, want ErrNotFound", err)
	}
}
