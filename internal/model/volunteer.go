package model

import (
	"time"

	"github.com/google/uuid"
)

// Availabilities lists the scheduling categories a volunteer can declare.
var Availabilities = []string{
	"Immediate (within 30 mins)",
	"Within 1 hour",
	"Scheduled / On-call",
	"Weekends",
}

const DefaultAvailability = "Immediate (within 30 mins)"

func ValidAvailability(a string) bool {
	for _, v := range Availabilities {
		if v == a {
			return true
		}
	}
	return false
}

// Volunteer is linked exactly 1:1 to an identity and upserted in place on
// every signup submission.
type Volunteer struct {
	ID              int64     `db:"id" json:"id"`
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	Skills          *string   `db:"skills" json:"skills,omitempty"`
	MedicalTraining bool      `db:"medical_training" json:"medical_training"`
	Availability    string    `db:"availability" json:"availability"`
	Location        *string   `db:"location" json:"location,omitempty"`
	VehicleDetails  *string   `db:"vehicle_details" json:"vehicle_details,omitempty"`
	Equipment       *string   `db:"equipment" json:"equipment,omitempty"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type VolunteerSignupRequest struct {
	Consent         bool    `json:"consent"`
	Skills          *string `json:"skills"`
	MedicalTraining bool    `json:"medical_training"`
	Availability    string  `json:"availability" binding:"omitempty,availability"`
	Location        *string `json:"location" binding:"omitempty,max=200"`
	VehicleDetails  *string `json:"vehicle_details"`
	Equipment       *string `json:"equipment"`
	Notes           *string `json:"notes"`
}
