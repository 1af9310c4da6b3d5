package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "pending"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// ValidAlertStatus reports whether s is one of the three alert states. The
// state machine is deliberately permissive: any state may move to any other,
// there is no terminal state.
func ValidAlertStatus(s AlertStatus) bool {
	switch s {
	case AlertStatusPending, AlertStatusAcknowledged, AlertStatusResolved:
		return true
	}
	return false
}

// Coordinate is a fixed-precision geographic coordinate stored as
// NUMERIC(10,6). It accepts JSON numbers and numeric strings on input.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q", s)
		}
		*c = Coordinate(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = Coordinate(f)
	return nil
}

func (c Coordinate) Value() (driver.Value, error) {
	return strconv.FormatFloat(float64(c), 'f', 6, 64), nil
}

func (c *Coordinate) Scan(src interface{}) error {
	switch v := src.(type) {
	case float64:
		*c = Coordinate(v)
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return fmt.Errorf("failed to scan coordinate: %w", err)
		}
		*c = Coordinate(f)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("failed to scan coordinate: %w", err)
		}
		*c = Coordinate(f)
	default:
		return fmt.Errorf("cannot scan %T into Coordinate", src)
	}
	return nil
}

// SOSAlert is a distress signal. The patient link is optional and cleared if
// the patient record goes away; the alert survives as anonymous.
type SOSAlert struct {
	ID        int64       `db:"id" json:"id"`
	PatientID *int64      `db:"patient_id" json:"patient_id,omitempty"`
	Latitude  Coordinate  `db:"latitude" json:"latitude"`
	Longitude Coordinate  `db:"longitude" json:"longitude"`
	Message   *string     `db:"message" json:"message,omitempty"`
	Phone     *string     `db:"phone" json:"phone,omitempty"`
	Status    AlertStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`

	// Populated by the staff listing join, empty otherwise.
	PatientMRN  *string `db:"patient_mrn" json:"patient_mrn,omitempty"`
	PatientName *string `db:"patient_name" json:"patient_name,omitempty"`
}

// IngestRequest tolerates both key-name conventions the field clients use.
type IngestRequest struct {
	Latitude  *Coordinate `json:"latitude"`
	Lat       *Coordinate `json:"lat"`
	Longitude *Coordinate `json:"longitude"`
	Lon       *Coordinate `json:"lon"`
	Lng       *Coordinate `json:"lng"`
	Message   *string     `json:"message"`
	Phone     *string     `json:"phone"`
}

// Coords resolves the alternate key names; ok is false when either
// coordinate is absent under every accepted name.
func (r *IngestRequest) Coords() (lat, lon Coordinate, ok bool) {
	latp := r.Latitude
	if latp == nil {
		latp = r.Lat
	}
	lonp := r.Longitude
	if lonp == nil {
		lonp = r.Lon
	}
	if lonp == nil {
		lonp = r.Lng
	}
	if latp == nil || lonp == nil {
		return 0, 0, false
	}
	return *latp, *lonp, true
}

type UpdateAlertStatusRequest struct {
	Status AlertStatus `json:"status" binding:"required"`
}

// AlertFilter narrows the staff listing. A zero Limit means unbounded.
type AlertFilter struct {
	Status    AlertStatus
	SearchMRN string
	Limit     int
}

type NotifyRequest struct {
	Latitude  *Coordinate `json:"latitude"`
	Longitude *Coordinate `json:"longitude"`
}
