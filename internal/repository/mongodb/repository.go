package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecoloop/farmer/internal/domain/models"
)

const summaryCollection = "daily_summaries"

// SummaryArchive stores one document per user and day in MongoDB.
type SummaryArchive struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// summaryDocument is the stored shape. Money is kept as decimal strings.
type summaryDocument struct {
	UserID       string    `bson:"user_id"`
	FarmName     string    `bson:"farm_name"`
	Date         string    `bson:"date"`
	ActiveFlocks int       `bson:"active_flocks"`
	LiveBirds    int       `bson:"live_birds"`
	Mortality    int       `bson:"mortality"`
	FeedConsumed float64   `bson:"feed_consumed"`
	Income       string    `bson:"income"`
	Expenses     string    `bson:"expenses"`
	Profit       string    `bson:"profit"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toDocument(s models.DailySummary) summaryDocument {
	return summaryDocument{
		UserID:       s.UserID,
		FarmName:     s.FarmName,
		Date:         s.Date,
		ActiveFlocks: s.ActiveFlocks,
		LiveBirds:    s.LiveBirds,
		Mortality:    s.Mortality,
		FeedConsumed: s.FeedConsumed,
		Income:       s.Income.StringFixed(2),
		Expenses:     s.Expenses.StringFixed(2),
		Profit:       s.Profit.StringFixed(2),
		CreatedAt:    s.CreatedAt,
	}
}

// NewSummaryArchive connects to MongoDB and verifies the connection.
func NewSummaryArchive(ctx context.Context, uri string, dbName string) (*SummaryArchive, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &SummaryArchive{
		client:   client,
		dbName:   dbName,
		collName: summaryCollection,
	}, nil
}

// SaveDailySummary upserts the summary keyed by user and date, so a rerun of
// the same day replaces the earlier document.
func (r *SummaryArchive) SaveDailySummary(ctx context.Context, summary models.DailySummary) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	filter := bson.M{"user_id": summary.UserID, "date": summary.Date}
	_, err := collection.ReplaceOne(ctx, filter, toDocument(summary), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save daily summary: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *SummaryArchive) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
