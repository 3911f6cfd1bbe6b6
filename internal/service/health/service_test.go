package health

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/repository/sqlite"
	"github.com/ecoloop/farmer/internal/service/flocks"
)

func setup(t *testing.T) (*Service, *flocks.Service, func() string) {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "health.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := sqlite.NewUserRepository(db)
	newUser := func() string {
		now := time.Now().UTC()
		u := &models.User{
			ID:           uuid.New().String(),
			Email:        uuid.New().String() + "@farm.test",
			PasswordHash: "x",
			Name:         "Vet",
			Subscription: models.SubscriptionFree,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, users.Create(context.Background(), u))
		return u.ID
	}

	flockSvc := flocks.NewService(sqlite.NewFlockRepository(db), nil)
	return NewService(sqlite.NewHealthRepository(db), flockSvc, nil), flockSvc, newUser
}

func TestRecordAndList(t *testing.T) {
	svc, flockSvc, newUser := setup(t)
	ctx := context.Background()
	owner := newUser()

	flock, err := flockSvc.Create(ctx, owner, flocks.CreateInput{Name: "A", Breed: "Kuroiler", InitialCount: 80, HatchDate: "2026-09-01"})
	require.NoError(t, err)

	_, err = svc.Record(ctx, owner, RecordInput{FlockID: flock.ID, Treatment: "Newcastle", TreatmentType: models.TreatmentVaccination, AdministeredOn: "2026-09-08"})
	require.NoError(t, err)
	rec, err := svc.Record(ctx, owner, RecordInput{FlockID: flock.ID, Treatment: "Vitamins", AdministeredOn: "2026-09-20"})
	require.NoError(t, err)
	assert.Equal(t, models.TreatmentOther, rec.TreatmentType)

	list, err := svc.List(ctx, owner, flock.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Vitamins", list[0].Treatment)
}

func TestForeignFlockIsHidden(t *testing.T) {
	svc, flockSvc, newUser := setup(t)
	ctx := context.Background()
	a := newUser()
	b := newUser()

	flock, err := flockSvc.Create(ctx, a, flocks.CreateInput{Name: "A", Breed: "Sasso", InitialCount: 80, HatchDate: "2026-09-01"})
	require.NoError(t, err)

	_, err = svc.List(ctx, b, flock.ID)
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)

	_, err = svc.Record(ctx, b, RecordInput{FlockID: flock.ID, Treatment: "x", AdministeredOn: "2026-09-02"})
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)

	list, err := svc.List(ctx, a, flock.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecord_Validation(t *testing.T) {
	svc, _, newUser := setup(t)
	owner := newUser()

	_, err := svc.Record(context.Background(), owner, RecordInput{FlockID: "f", Treatment: "x", TreatmentType: "surgery", AdministeredOn: "2026-09-02"})
	assert.ErrorIs(t, err, models.ErrValidation)
}
