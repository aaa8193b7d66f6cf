package attendance

import "time"

type Status string

const (
	StatusOpen            Status = "OPEN"
	StatusPresent         Status = "PRESENT"
	StatusHalfDay         Status = "HALF_DAY"
	StatusAbsent          Status = "ABSENT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
)

var StatusValues = []string{
	string(StatusOpen),
	string(StatusPresent),
	string(StatusHalfDay),
	string(StatusAbsent),
	string(StatusPendingApproval),
}

// Attendance is the daily punch record, keyed uniquely by
// (advisor, date, shift). Date always denotes the shift's start calendar
// day, even when an overnight checkout lands on the next day. Rows are
// created by the first check-in or synthesized ABSENT by the nightly batch,
// and are never deleted.
type Attendance struct {
	ID        string
	AdvisorID string
	StoreID   string
	ShiftID   string
	Date      time.Time

	CheckIn           *time.Time
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckInProofURL   *string
	CheckOut          *time.Time
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutProofURL  *string

	WorkedMinutes   int
	LateMinutes     int
	EarlyOutMinutes int
	OvertimeMinutes int

	Status Status
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined for listings
	AdvisorName *string
	ShiftName   *string
}

// OpenForCheckout reports whether a checkout punch may be applied.
func (a Attendance) OpenForCheckout() bool {
	if a.Status != StatusOpen && a.Status != StatusPendingApproval {
		return false
	}
	return a.CheckIn != nil && a.CheckOut == nil
}
