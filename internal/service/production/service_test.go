package production

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/repository/sqlite"
	"github.com/ecoloop/farmer/internal/service/flocks"
)

type fixture struct {
	db     *sqlx.DB
	flocks *flocks.Service
	svc    *Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "production.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	flockSvc := flocks.NewService(sqlite.NewFlockRepository(db), nil)
	return &fixture{
		db:     db,
		flocks: flockSvc,
		svc:    NewService(sqlite.NewProductionRepository(db), flockSvc, nil),
	}
}

func (f *fixture) user(t *testing.T) string {
	t.Helper()
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@farm.test",
		PasswordHash: "x",
		Name:         "Owner",
		Subscription: models.SubscriptionFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, sqlite.NewUserRepository(f.db).Create(context.Background(), u))
	return u.ID
}

func (f *fixture) flock(t *testing.T, owner string, initial int) *models.Flock {
	t.Helper()
	flock, err := f.flocks.Create(context.Background(), owner, flocks.CreateInput{
		Name:         "Layers",
		Breed:        "ISA Brown",
		InitialCount: initial,
		HatchDate:    "2026-08-01",
	})
	require.NoError(t, err)
	return flock
}

func (f *fixture) currentCount(t *testing.T, owner, flockID string) int {
	t.Helper()
	flock, err := f.flocks.Get(context.Background(), owner, flockID)
	require.NoError(t, err)
	return flock.CurrentCount
}

func TestUpsert_SubtractsMortality(t *testing.T) {
	f := setup(t)
	owner := f.user(t)
	flock := f.flock(t, owner, 500)

	rec, err := f.svc.Upsert(context.Background(), owner, UpsertInput{FlockID: flock.ID, Date: "2026-10-01", Mortality: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Mortality)
	assert.Equal(t, 490, f.currentCount(t, owner, flock.ID))
}

func TestUpsert_ReplayDoubleApplies(t *testing.T) {
	f := setup(t)
	owner := f.user(t)
	flock := f.flock(t, owner, 100)
	ctx := context.Background()

	in := UpsertInput{FlockID: flock.ID, Date: "2026-10-02", Mortality: 3}
	first, err := f.svc.Upsert(ctx, owner, in)
	require.NoError(t, err)
	second, err := f.svc.Upsert(ctx, owner, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 94, f.currentCount(t, owner, flock.ID))

	records, err := f.svc.List(ctx, owner, flock.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUpsert_CountNeverExceedsInitial(t *testing.T) {
	f := setup(t)
	owner := f.user(t)
	flock := f.flock(t, owner, 50)
	ctx := context.Background()

	days := []string{"2026-10-01", "2026-10-02", "2026-10-03", "2026-10-04"}
	for i, day := range days {
		_, err := f.svc.Upsert(ctx, owner, UpsertInput{FlockID: flock.ID, Date: day, Mortality: i})
		require.NoError(t, err)
		assert.LessOrEqual(t, f.currentCount(t, owner, flock.ID), flock.InitialCount)
	}
	assert.Equal(t, 44, f.currentCount(t, owner, flock.ID))
}

func TestUpsert_ForeignFlockLooksMissing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.user(t)
	b := f.user(t)
	flock := f.flock(t, a, 100)

	_, foreignErr := f.svc.Upsert(ctx, b, UpsertInput{FlockID: flock.ID, Date: "2026-10-01", Mortality: 1})
	_, missingErr := f.svc.Upsert(ctx, b, UpsertInput{FlockID: uuid.New().String(), Date: "2026-10-01", Mortality: 1})
	assert.ErrorIs(t, foreignErr, models.ErrNotFoundOrForbidden)
	assert.Equal(t, missingErr, foreignErr)

	_, err := f.svc.List(ctx, b, flock.ID)
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)

	assert.Equal(t, 100, f.currentCount(t, a, flock.ID))
}

func TestUpsert_Validation(t *testing.T) {
	f := setup(t)
	owner := f.user(t)
	flock := f.flock(t, owner, 100)
	negative := -1.0

	cases := []UpsertInput{
		{FlockID: flock.ID, Date: "2026-10-01", Mortality: -1},
		{FlockID: flock.ID, Date: "yesterday"},
		{Date: "2026-10-01"},
		{FlockID: flock.ID, Date: "2026-10-01", FeedConsumed: &negative},
	}
	for _, in := range cases {
		_, err := f.svc.Upsert(context.Background(), owner, in)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
	assert.Equal(t, 100, f.currentCount(t, owner, flock.ID))
}

func TestList_NewestDateFirst(t *testing.T) {
	f := setup(t)
	owner := f.user(t)
	flock := f.flock(t, owner, 100)
	ctx := context.Background()

	for _, day := range []string{"2026-10-02", "2026-10-05", "2026-10-01"} {
		_, err := f.svc.Upsert(ctx, owner, UpsertInput{FlockID: flock.ID, Date: day})
		require.NoError(t, err)
	}

	records, err := f.svc.List(ctx, owner, flock.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2026-10-05", records[0].RecordDate)
	assert.Equal(t, "2026-10-01", records[2].RecordDate)
}
