package request

import "time"

type Type string

const (
	TypeLate            Type = "LATE"
	TypeOutsideGeofence Type = "OUTSIDE_GEOFENCE"
	TypeOvertime        Type = "OT"
	TypeAdjust          Type = "ADJUST"
)

var TypeValues = []string{
	string(TypeLate),
	string(TypeOutsideGeofence),
	string(TypeOvertime),
	string(TypeAdjust),
}

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Meta is the type-specific payload. OT requests carry RequestedMinutes;
// ADJUST requests carry replacement punch timestamps (naive values are
// interpreted in the deployment timezone). LATE and OUTSIDE_GEOFENCE carry
// nothing.
type Meta struct {
	RequestedMinutes *int    `json:"requested_minutes,omitempty"`
	SetCheckIn       *string `json:"set_check_in,omitempty"`
	SetCheckOut      *string `json:"set_check_out,omitempty"`
}

// AttendanceRequest is an approval-workflow item attached to one attendance
// row. A decision is terminal: once APPROVED or REJECTED the request can
// never be re-decided.
type AttendanceRequest struct {
	ID           string
	AttendanceID string
	Type         Type
	Status       Status
	RequestedBy  string
	DecidedBy    *string
	DecidedAt    *time.Time
	Reason       string
	Meta         Meta
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Decidable reports whether a decision may still be recorded.
func (r AttendanceRequest) Decidable() bool {
	return r.Status == StatusPending
}
