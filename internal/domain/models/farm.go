package models

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// FlockStatus tracks where a flock is in its production cycle.
type FlockStatus string

const (
	FlockActive FlockStatus = "active"
	FlockClosed FlockStatus = "closed"
)

// Flock is one batch of birds raised together under a single owner.
type Flock struct {
	ID                    string      `db:"id" json:"id"`
	UserID                string      `db:"user_id" json:"user_id"`
	Name                  string      `db:"name" json:"name"`
	Breed                 string      `db:"breed" json:"breed"`
	InitialCount          int         `db:"initial_count" json:"initial_count"`
	CurrentCount          int         `db:"current_count" json:"current_count"`
	HatchDate             string      `db:"hatch_date" json:"hatch_date"`
	ExpectedSlaughterDate *string     `db:"expected_slaughter_date" json:"expected_slaughter_date"`
	HousingType           string      `db:"housing_type" json:"housing_type"`
	Status                FlockStatus `db:"status" json:"status"`
	CreatedAt             time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time   `db:"updated_at" json:"updated_at"`
}

// ProductionRecord captures one day of observations for a flock.
type ProductionRecord struct {
	ID            string    `db:"id" json:"id"`
	FlockID       string    `db:"flock_id" json:"flock_id"`
	RecordDate    string    `db:"record_date" json:"record_date"`
	Mortality     int       `db:"mortality" json:"mortality"`
	AvgWeight     *float64  `db:"avg_weight" json:"avg_weight"`
	FeedConsumed  *float64  `db:"feed_consumed" json:"feed_consumed"`
	WaterConsumed *float64  `db:"water_consumed" json:"water_consumed"`
	Temperature   *float64  `db:"temperature" json:"temperature"`
	Humidity      *float64  `db:"humidity" json:"humidity"`
	Notes         string    `db:"notes" json:"notes"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// TreatmentType classifies a health record.
type TreatmentType string

const (
	TreatmentVaccination TreatmentType = "vaccination"
	TreatmentMedication  TreatmentType = "medication"
	TreatmentOther       TreatmentType = "other"
)

// HealthRecord logs a treatment administered to a flock.
type HealthRecord struct {
	ID             string        `db:"id" json:"id"`
	FlockID        string        `db:"flock_id" json:"flock_id"`
	Treatment      string        `db:"treatment" json:"treatment"`
	TreatmentType  TreatmentType `db:"treatment_type" json:"treatment_type"`
	AdministeredOn string        `db:"administered_on" json:"administered_on"`
	Notes          string        `db:"notes" json:"notes"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}
