package boat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	boats  map[string]*Boat
	grants map[string]bool
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		boats:  make(map[string]*Boat),
		grants: make(map[string]bool),
	}
}

func grantKey(boatID, memberID string) string {
	return boatID + "|" + memberID
}

func (r *fakeRepo) Create(_ context.Context, b *Boat) error {
	for _, other := range r.boats {
		if other.Code == b.Code {
			return ErrCodeAlreadyUsed
		}
	}
	r.nextID++
	b.ID = fmt.Sprintf("boat-%d", r.nextID)
	cp := *b
	r.boats[b.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Boat, error) {
	b, ok := r.boats[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]*Boat, int, error) {
	out := make([]*Boat, 0, len(r.boats))
	for _, b := range r.boats {
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, b *Boat) error {
	if _, ok := r.boats[b.ID]; !ok {
		return ErrNotFound
	}
	cp := *b
	r.boats[b.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.boats[id]; !ok {
		return ErrNotFound
	}
	delete(r.boats, id)
	return nil
}

func (r *fakeRepo) GrantPermission(_ context.Context, boatID, memberID string) error {
	r.grants[grantKey(boatID, memberID)] = true
	return nil
}

func (r *fakeRepo) RevokePermission(_ context.Context, boatID, memberID string) error {
	key := grantKey(boatID, memberID)
	if !r.grants[key] {
		return ErrGrantNotFound
	}
	delete(r.grants, key)
	return nil
}

func (r *fakeRepo) HasPermission(_ context.Context, boatID, memberID string) (bool, error) {
	return r.grants[grantKey(boatID, memberID)], nil
}

func (r *fakeRepo) ListPermissions(_ context.Context, boatID string) ([]*Permission, error) {
	return nil, nil
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo), repo
}

func addBoat(t *testing.T, svc Service, code string, usageType UsageType, inService bool) *Boat {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateRequest{
		Code:      code,
		Name:      "Test " + code,
		BoatType:  "single",
		UsageType: string(usageType),
		InService: inService,
	})
	require.NoError(t, err)
	return b
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{Code: "X1", Name: "  ", UsageType: "general"})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Create(ctx, CreateRequest{Code: "X1", Name: "Boat", UsageType: "whenever"})
	assert.ErrorIs(t, err, ErrInvalidUsageType)
}

func TestCheckBookableGeneral(t *testing.T) {
	svc, _ := newTestService()
	b := addBoat(t, svc, "G1", UsageGeneral, true)

	got, err := svc.CheckBookable(context.Background(), b.ID, "m1", false)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestCheckBookableOutOfService(t *testing.T) {
	svc, _ := newTestService()
	b := addBoat(t, svc, "G1", UsageGeneral, false)

	_, err := svc.CheckBookable(context.Background(), b.ID, "m1", false)
	assert.ErrorIs(t, err, ErrOutOfService)

	// Out of service blocks admins too.
	_, err = svc.CheckBookable(context.Background(), b.ID, "m1", true)
	assert.ErrorIs(t, err, ErrOutOfService)
}

func TestCheckBookableRestricted(t *testing.T) {
	svc, _ := newTestService()
	b := addBoat(t, svc, "R1", UsageRestricted, true)
	ctx := context.Background()

	_, err := svc.CheckBookable(ctx, b.ID, "m1", false)
	assert.ErrorIs(t, err, ErrRestricted)

	// Restricted means restricted for everyone, admins included.
	_, err = svc.CheckBookable(ctx, b.ID, "m1", true)
	assert.ErrorIs(t, err, ErrRestricted)
}

func TestCheckBookableCaptainsPermission(t *testing.T) {
	svc, _ := newTestService()
	b := addBoat(t, svc, "C1", UsageCaptainsPermission, true)
	ctx := context.Background()

	_, err := svc.CheckBookable(ctx, b.ID, "m1", false)
	assert.ErrorIs(t, err, ErrPermissionNeeded)

	// Admins bypass the grant requirement.
	_, err = svc.CheckBookable(ctx, b.ID, "m1", true)
	assert.NoError(t, err)

	// A grant unlocks the boat for the member.
	require.NoError(t, svc.GrantPermission(ctx, b.ID, "m1"))
	_, err = svc.CheckBookable(ctx, b.ID, "m1", false)
	assert.NoError(t, err)

	// Grants are per member.
	_, err = svc.CheckBookable(ctx, b.ID, "m2", false)
	assert.ErrorIs(t, err, ErrPermissionNeeded)

	require.NoError(t, svc.RevokePermission(ctx, b.ID, "m1"))
	_, err = svc.CheckBookable(ctx, b.ID, "m1", false)
	assert.ErrorIs(t, err, ErrPermissionNeeded)
}

func TestCheckBookableUnknownBoat(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CheckBookable(context.Background(), "missing", "m1", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGrantPermissionRequiresBoat(t *testing.T) {
	svc, _ := newTestService()

	err := svc.GrantPermission(context.Background(), "missing", "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUsageType(t *testing.T) {
	svc, _ := newTestService()
	b := addBoat(t, svc, "G1", UsageGeneral, true)
	ctx := context.Background()

	restricted := string(UsageRestricted)
	updated, err := svc.Update(ctx, b.ID, UpdateRequest{UsageType: &restricted})
	require.NoError(t, err)
	assert.Equal(t, UsageRestricted, updated.UsageType)

	bad := "whenever"
	_, err = svc.Update(ctx, b.ID, UpdateRequest{UsageType: &bad})
	assert.ErrorIs(t, err, ErrInvalidUsageType)
}
