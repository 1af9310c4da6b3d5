package model

import (
	"time"

	"github.com/google/uuid"
)

// BloodTypes lists the accepted blood group values.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

func ValidBloodType(bt string) bool {
	for _, v := range BloodTypes {
		if v == bt {
			return true
		}
	}
	return false
}

// Patient is a medical identity record keyed by a generated MRN. The user
// link is optional so anonymous intake records can exist without an account.
type Patient struct {
	ID                           int64      `db:"id" json:"id"`
	UserID                       *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FullName                     string     `db:"full_name" json:"full_name"`
	DateOfBirth                  time.Time  `db:"date_of_birth" json:"date_of_birth"`
	BloodType                    *string    `db:"blood_type" json:"blood_type,omitempty"`
	Weight                       float64    `db:"weight" json:"weight"`
	Height                       float64    `db:"height" json:"height"`
	MedicalConditions            *string    `db:"medical_conditions" json:"medical_conditions,omitempty"`
	Allergies                    *string    `db:"allergies" json:"allergies,omitempty"`
	Medications                  *string    `db:"medications" json:"medications,omitempty"`
	Address                      string     `db:"address" json:"address"`
	PhoneNumber                  string     `db:"phone_number" json:"phone_number"`
	EmergencyContactName         string     `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone        string     `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	EmergencyContactEmail        *string    `db:"emergency_contact_email" json:"emergency_contact_email,omitempty"`
	EmergencyContactRelationship string     `db:"emergency_contact_relationship" json:"emergency_contact_relationship"`
	MedicalRecordNumber          string     `db:"medical_record_number" json:"medical_record_number"`
	CreatedAt                    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                    time.Time  `db:"updated_at" json:"updated_at"`
}

// MedicalProfileRequest is the body of the medical-ID upsert. The MRN and
// user link are never client-supplied.
type MedicalProfileRequest struct {
	DateOfBirth                  time.Time `json:"date_of_birth" binding:"required"`
	BloodType                    *string   `json:"blood_type" binding:"omitempty,bloodtype"`
	Weight                       float64   `json:"weight" binding:"required,gt=0"`
	Height                       float64   `json:"height" binding:"required,gt=0"`
	MedicalConditions            *string   `json:"medical_conditions" binding:"omitempty,max=255"`
	Allergies                    *string   `json:"allergies" binding:"omitempty,max=255"`
	Medications                  *string   `json:"medications" binding:"omitempty,max=255"`
	Address                      string    `json:"address" binding:"required,max=255"`
	PhoneNumber                  string    `json:"phone_number" binding:"required,max=15"`
	EmergencyContactName         string    `json:"emergency_contact_name" binding:"required,max=60"`
	EmergencyContactPhone        string    `json:"emergency_contact_phone" binding:"required,max=15"`
	EmergencyContactEmail        *string   `json:"emergency_contact_email" binding:"omitempty,email"`
	EmergencyContactRelationship string    `json:"emergency_contact_relationship" binding:"required,max=30"`
}

type MedicalProfileResponse struct {
	Patient *Patient `json:"patient"`
	IsNew   bool     `json:"is_new"`
}
