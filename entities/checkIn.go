package entities

import (
	"time"

	"facegate.io/application/utils"
)

// CheckIn is the authoritative record of one accepted detection.
type CheckIn struct {
	EmployeeID string  `bson:"employeeID" json:"employeeID"`
	SessionID  string  `bson:"sessionID" json:"sessionID"`
	Similarity float64 `bson:"similarity" json:"similarity"`
	Distance   float64 `bson:"distance" json:"distance"`
	Snapshot   *string `bson:"snapshot" json:"snapshot,omitempty"` // base64 frame, optional

	ID        string    `bson:"_id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model CheckIn) ParseModel() any {
	now := time.Now()
	if model.ID == "" {
		model.ID = utils.GenerateULIDString()
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	if model.Timestamp.IsZero() {
		model.Timestamp = now
	}
	model.UpdatedAt = now
	return &model
}
