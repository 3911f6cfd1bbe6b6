package reporting

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/repository/sqlite"
	"github.com/ecoloop/farmer/internal/service/alerts"
	"github.com/ecoloop/farmer/internal/service/finance"
	"github.com/ecoloop/farmer/internal/service/flocks"
	"github.com/ecoloop/farmer/internal/service/production"
)

// Alerts are stamped with the wall clock, so scans run against it too.
var scanTime = time.Now().UTC()

func day(offset int) string {
	return scanTime.AddDate(0, 0, offset).Format(models.DateLayout)
}

type captureSink struct {
	saved []models.DailySummary
	err   error
}

func (c *captureSink) SaveDailySummary(_ context.Context, s models.DailySummary) error {
	if c.err != nil {
		return c.err
	}
	c.saved = append(c.saved, s)
	return nil
}

type farm struct {
	db         *sqlx.DB
	flocks     *flocks.Service
	production *production.Service
	finance    *finance.Service
	alerts     *alerts.Service
	owner      models.User
}

func newFarm(t *testing.T) *farm {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "reporting.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	owner := models.User{
		ID:           uuid.New().String(),
		Email:        "farm@farm.test",
		PasswordHash: "x",
		Name:         "Mariam",
		FarmName:     "Hilltop",
		Subscription: models.SubscriptionFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, sqlite.NewUserRepository(db).Create(context.Background(), &owner))

	flockSvc := flocks.NewService(sqlite.NewFlockRepository(db), nil)
	return &farm{
		db:         db,
		flocks:     flockSvc,
		production: production.NewService(sqlite.NewProductionRepository(db), flockSvc, nil),
		finance:    finance.NewService(sqlite.NewFinanceRepository(db), nil),
		alerts:     alerts.NewService(sqlite.NewAlertRepository(db), nil, nil),
		owner:      owner,
	}
}

func (f *farm) service(sinks ...ReportSink) *Service {
	svc := NewService(Sources{
		Flocks:     sqlite.NewFlockRepository(f.db),
		Production: sqlite.NewProductionRepository(f.db),
		Alerts:     f.alerts,
		Users:      sqlite.NewUserRepository(f.db),
		Herd:       sqlite.NewDashboardRepository(f.db),
		Ledger:     sqlite.NewFinanceRepository(f.db),
	}, sinks, Options{MortalityAlertPercent: 2, SlaughterLeadDays: 7}, nil)
	svc.now = func() time.Time { return scanTime }
	return svc
}

func TestScanAlerts_RaisesOncePerDay(t *testing.T) {
	f := newFarm(t)
	ctx := context.Background()

	flock, err := f.flocks.Create(ctx, f.owner.ID, flocks.CreateInput{
		Name:                  "Broilers B",
		Breed:                 "Ross 308",
		InitialCount:          500,
		HatchDate:             day(-35),
		ExpectedSlaughterDate: day(5),
	})
	require.NoError(t, err)
	_, err = f.production.Upsert(ctx, f.owner.ID, production.UpsertInput{FlockID: flock.ID, Date: day(-1), Mortality: 20})
	require.NoError(t, err)

	svc := f.service()
	raised, err := svc.ScanAlerts(ctx, scanTime)
	require.NoError(t, err)
	assert.Equal(t, 2, raised)

	raised, err = svc.ScanAlerts(ctx, scanTime)
	require.NoError(t, err)
	assert.Zero(t, raised)

	list, err := f.alerts.List(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byTitle := map[string]models.Alert{}
	for _, a := range list {
		byTitle[a.Title] = a
	}
	assert.Equal(t, models.AlertWarning, byTitle[titleHighMortality].Type)
	assert.Contains(t, byTitle[titleHighMortality].Message, "lost 20 birds")
	assert.Equal(t, models.AlertInfo, byTitle[titleSlaughterUpcoming].Type)
	assert.Contains(t, byTitle[titleSlaughterUpcoming].Message, "5 days left")
}

func TestScanAlerts_QuietFlock(t *testing.T) {
	f := newFarm(t)
	ctx := context.Background()

	flock, err := f.flocks.Create(ctx, f.owner.ID, flocks.CreateInput{
		Name:                  "Layers",
		Breed:                 "Lohmann",
		InitialCount:          1000,
		HatchDate:             day(-120),
		ExpectedSlaughterDate: day(200),
	})
	require.NoError(t, err)
	_, err = f.production.Upsert(ctx, f.owner.ID, production.UpsertInput{FlockID: flock.ID, Date: day(-1), Mortality: 5})
	require.NoError(t, err)

	raised, err := f.service().ScanAlerts(ctx, scanTime)
	require.NoError(t, err)
	assert.Zero(t, raised)
}

func TestMortalityRate(t *testing.T) {
	svc := NewService(Sources{}, nil, Options{MortalityAlertPercent: 2}, nil)

	rate, high := svc.mortalityRate(10, 490)
	assert.InDelta(t, 2.04, rate, 0.01)
	assert.True(t, high)

	_, high = svc.mortalityRate(2, 100)
	assert.False(t, high)

	_, high = svc.mortalityRate(1, 0)
	assert.True(t, high)
}

func TestDailySummaries(t *testing.T) {
	f := newFarm(t)
	ctx := context.Background()

	flock, err := f.flocks.Create(ctx, f.owner.ID, flocks.CreateInput{Name: "A", Breed: "Cobb", InitialCount: 300, HatchDate: "2026-09-01"})
	require.NoError(t, err)
	feed := 42.5
	_, err = f.production.Upsert(ctx, f.owner.ID, production.UpsertInput{FlockID: flock.ID, Date: "2026-10-19", Mortality: 3, FeedConsumed: &feed})
	require.NoError(t, err)
	_, err = f.finance.Record(ctx, f.owner.ID, finance.RecordInput{Type: models.TransactionIncome, Category: "sales", Amount: decimal.NewNullDecimal(decimal.NewFromInt(9000)), TransactionDate: "2026-10-19"})
	require.NoError(t, err)
	_, err = f.finance.Record(ctx, f.owner.ID, finance.RecordInput{Type: models.TransactionExpense, Category: "feed", Amount: decimal.NewNullDecimal(decimal.NewFromInt(2500)), TransactionDate: "2026-10-19"})
	require.NoError(t, err)

	archive := &captureSink{}
	sheet := &captureSink{}
	delivered, err := f.service(archive, sheet).DailySummaries(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)

	require.Len(t, archive.saved, 1)
	require.Len(t, sheet.saved, 1)
	got := archive.saved[0]
	assert.Equal(t, "Hilltop", got.FarmName)
	assert.Equal(t, 1, got.ActiveFlocks)
	assert.Equal(t, 297, got.LiveBirds)
	assert.Equal(t, 3, got.Mortality)
	assert.InDelta(t, 42.5, got.FeedConsumed, 0.001)
	assert.True(t, decimal.NewFromInt(6500).Equal(got.Profit))
	assert.Equal(t, scanTime, got.CreatedAt)
}

func TestDailySummaries_SinkFailureIsReported(t *testing.T) {
	f := newFarm(t)
	ctx := context.Background()

	_, err := f.flocks.Create(ctx, f.owner.ID, flocks.CreateInput{Name: "A", Breed: "Cobb", InitialCount: 10, HatchDate: "2026-09-01"})
	require.NoError(t, err)

	broken := &captureSink{err: errors.New("sheet quota exceeded")}
	healthy := &captureSink{}
	_, err = f.service(broken, healthy).DailySummaries(ctx, "2026-10-19")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheet quota exceeded")
	assert.Len(t, healthy.saved, 1)

	_, err = f.service().DailySummaries(ctx, "19/10/2026")
	assert.Error(t, err)
}
