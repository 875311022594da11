package member

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oarlockdev/boathouse-backend/internal/auth"
)

type fakeRepo struct {
	members map[string]*Member
	allowed map[string]bool
	nextID  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		members: make(map[string]*Member),
		allowed: make(map[string]bool),
	}
}

func (r *fakeRepo) Create(_ context.Context, m *Member) error {
	r.nextID++
	m.ID = fmt.Sprintf("member-%d", r.nextID)
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Member, int, error) {
	out := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		cp := *m
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.members[id]; !ok {
		return ErrNotFound
	}
	delete(r.members, id)
	return nil
}

func (r *fakeRepo) IsEmailAllowed(_ context.Context, email string) (bool, error) {
	return r.allowed[email], nil
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(bcrypt.MinCost)), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.allowed["rower@club.org"] = true

	m, err := svc.Register(ctx, "  Rower@Club.org ", "supersecret", " Alex ")
	require.NoError(t, err)
	assert.Equal(t, "rower@club.org", m.Email, "email is normalized")
	assert.Equal(t, "Alex", m.Name)
	assert.NotEqual(t, "supersecret", m.PasswordHash)
	assert.False(t, m.IsAdmin)
}

func TestRegisterRequiresAllowList(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "stranger@example.com", "supersecret", "Stranger")
	assert.ErrorIs(t, err, ErrEmailNotAllowed)
}

func TestRegisterValidation(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.allowed["rower@club.org"] = true

	_, err := svc.Register(ctx, "   ", "supersecret", "Alex")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "rower@club.org", "short", "Alex")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.allowed["rower@club.org"] = true

	_, err := svc.Register(ctx, "rower@club.org", "supersecret", "Alex")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ROWER@club.org", "supersecret", "Alex")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	repo.allowed["rower@club.org"] = true

	registered, err := svc.Register(ctx, "rower@club.org", "supersecret", "Alex")
	require.NoError(t, err)

	m, err := svc.Login(ctx, "Rower@Club.org", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, m.ID)

	_, err = svc.Login(ctx, "rower@club.org", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@club.org", "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "rower@club.org", "  ")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
