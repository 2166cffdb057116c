package model

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/gitwithsonu015/campus-sos/internal/errors"
)

// DefaultAlertMessage is used when a reporter submits an SOS without text.
const DefaultAlertMessage = "SOS — help needed"

// maxMessageLength bounds free-text alert messages.
const maxMessageLength = 500

// Alert represents a single SOS event reported by a user.
type Alert struct {
	ID             string      `json:"id"`
	OwnerID        string      `json:"owner_id"`
	OwnerName      string      `json:"owner_name,omitempty"`
	Location       Location    `json:"location"`
	Message        string      `json:"message"`
	Status         AlertStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	GraceExpiresAt time.Time   `json:"grace_expires_at"`
	CancelledAt    *time.Time  `json:"cancelled_at,omitempty"`
	AcknowledgedBy *string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"`
}

// Location is the reporter's position at the time of the SOS.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	// Accuracy is the reported GPS accuracy in meters, if the client provided one.
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// Validate checks that the location is a real geographic coordinate.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) {
		return apperrors.ValidationField("lat", "latitude must be a finite number")
	}
	if math.IsNaN(l.Lng) || math.IsInf(l.Lng, 0) {
		return apperrors.ValidationField("lng", "longitude must be a finite number")
	}
	if l.Lat < -90 || l.Lat > 90 {
		return apperrors.ValidationField("lat", "latitude must be between -90 and 90")
	}
	if l.Lng < -180 || l.Lng > 180 {
		return apperrors.ValidationField("lng", "longitude must be between -180 and 180")
	}
	if l.Accuracy != nil {
		if math.IsNaN(*l.Accuracy) || math.IsInf(*l.Accuracy, 0) || *l.Accuracy < 0 {
			return apperrors.ValidationField("accuracy", "accuracy must be a non-negative number")
		}
	}
	return nil
}

// AlertStatus represents the lifecycle state of an alert.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusCancelled    AlertStatus = "cancelled"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
)

// Valid returns true if the status is one of the supported values.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusActive, AlertStatusCancelled, AlertStatusAcknowledged:
		return true
	default:
		return false
	}
}

// Terminal returns true for statuses that permit no further transitions.
func (s AlertStatus) Terminal() bool {
	return s == AlertStatusCancelled || s == AlertStatusAcknowledged
}

// String returns the string representation of the alert status.
func (s AlertStatus) String() string {
	return string(s)
}

// CreateAlertRequest represents a request to raise a new SOS alert.
type CreateAlertRequest struct {
	OwnerID   string   `json:"owner_id"`
	OwnerName string   `json:"owner_name,omitempty"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Message   string   `json:"message,omitempty"`
}

// Normalize trims free-text fields and applies the default SOS message.
func (r *CreateAlertRequest) Normalize() {
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.OwnerName = strings.TrimSpace(r.OwnerName)
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		r.Message = DefaultAlertMessage
	}
}

// Validate validates the CreateAlertRequest fields.
func (r *CreateAlertRequest) Validate() error {
	if r.OwnerID == "" {
		return apperrors.ValidationField("owner_id", "owner_id is required")
	}
	if utf8.RuneCountInString(r.Message) > maxMessageLength {
		return apperrors.ValidationField("message", "message cannot exceed 500 characters")
	}
	return r.Location().Validate()
}

// Location assembles the request coordinates into a Location value.
func (r *CreateAlertRequest) Location() Location {
	return Location{Lat: r.Lat, Lng: r.Lng, Accuracy: r.Accuracy}
}
