package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
)

type fakeAttendanceRepo struct {
	rows   map[string]attendance.Attendance
	nextID int
}

func (f *fakeAttendanceRepo) key(advisorID string, date time.Time, shiftID string) string {
	return advisorID + "|" + date.Format("2006-01-02") + "|" + shiftID
}

func (f *fakeAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.nextID++
	a.ID = fmt.Sprintf("att-%d", f.nextID)
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeAttendanceRepo) CreateIfMissing(_ context.Context, a attendance.Attendance) (bool, error) {
	for _, existing := range f.rows {
		if f.key(existing.AdvisorID, existing.Date, existing.ShiftID) == f.key(a.AdvisorID, a.Date, a.ShiftID) {
			return false, nil
		}
	}
	f.nextID++
	a.ID = fmt.Sprintf("att-%d", f.nextID)
	f.rows[a.ID] = a
	return true, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	a, ok := f.rows[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (f *fakeAttendanceRepo) GetByKey(_ context.Context, advisorID string, date time.Time, shiftID string) (*attendance.Attendance, error) {
	for _, a := range f.rows {
		if f.key(a.AdvisorID, a.Date, a.ShiftID) == f.key(advisorID, date, shiftID) {
			row := a
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) StampCheckIn(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, a attendance.Attendance) error {
	if _, ok := f.rows[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	f.rows[a.ID] = a
	return nil
}

func (f *fakeAttendanceRepo) ListOpenForDate(_ context.Context, date time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range f.rows {
		open := a.Status == attendance.StatusOpen || a.Status == attendance.StatusPendingApproval
		if a.Date.Equal(date) && a.CheckIn != nil && a.CheckOut == nil && open {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) List(_ context.Context, _ attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) ListByAdvisor(_ context.Context, _ string, _ attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	return nil, 0, nil
}

type fakeUserRepo struct {
	advisors []user.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, _ string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) ListActiveAdvisors(_ context.Context) ([]user.User, error) {
	return f.advisors, nil
}

type fakeShiftRepo struct {
	shifts map[string]shift.Shift
}

func (f *fakeShiftRepo) Create(_ context.Context, s shift.Shift) (shift.Shift, error) { return s, nil }

func (f *fakeShiftRepo) GetByID(_ context.Context, id string) (shift.Shift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (f *fakeShiftRepo) List(_ context.Context, _ bool) ([]shift.Shift, error) { return nil, nil }
func (f *fakeShiftRepo) Update(_ context.Context, _ shift.Shift) error         { return nil }
func (f *fakeShiftRepo) IsReferenced(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type fakeResolver struct {
	planned map[string]*shift.Shift // advisorID -> shift
}

func (f *fakeResolver) ResolvePlannedShift(_ context.Context, advisorID string, _ time.Time) (*shift.Shift, error) {
	return f.planned[advisorID], nil
}

func strPtr(s string) *string { return &s }

func wallClock(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

func day(d int) time.Time {
	return time.Date(2025, 8, d, 0, 0, 0, 0, time.UTC)
}

func newFixture() (*Service, *fakeAttendanceRepo, *fakeResolver, *fakeUserRepo) {
	dayShift := shift.Shift{
		ID: "day", Name: "Day", IsActive: true,
		StartTime: wallClock(9, 0), EndTime: wallClock(18, 0),
	}
	nightShift := shift.Shift{
		ID: "night", Name: "Night", IsActive: true, IsOvernight: true,
		StartTime: wallClock(22, 0), EndTime: wallClock(6, 0),
	}

	attRepo := &fakeAttendanceRepo{rows: map[string]attendance.Attendance{}}
	userRepo := &fakeUserRepo{}
	shiftRepo := &fakeShiftRepo{shifts: map[string]shift.Shift{"day": dayShift, "night": nightShift}}
	resolver := &fakeResolver{planned: map[string]*shift.Shift{}}

	svc := NewService(attRepo, userRepo, shiftRepo, resolver, attendance.DefaultMetricRules(), time.UTC)
	return svc, attRepo, resolver, userRepo
}

func seedOpenRow(attRepo *fakeAttendanceRepo, advisorID, shiftID string, date, checkIn time.Time, status attendance.Status) attendance.Attendance {
	row, _ := attRepo.Create(context.Background(), attendance.Attendance{
		AdvisorID: advisorID, StoreID: "store-1", ShiftID: shiftID,
		Date: date, CheckIn: &checkIn, Status: status,
	})
	return row
}

func TestFinalizeOpenForDate_SynthesizesCheckoutAtShiftEnd(t *testing.T) {
	svc, attRepo, _, _ := newFixture()
	row := seedOpenRow(attRepo, "adv-1", "day", day(13),
		time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC), attendance.StatusOpen)

	count, err := svc.FinalizeOpenForDate(context.Background(), day(13))

	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got := attRepo.rows[row.ID]
	require.NotNil(t, got.CheckOut)
	assert.Equal(t, time.Date(2025, 8, 13, 18, 0, 0, 0, time.UTC), got.CheckOut.UTC())
	assert.Equal(t, attendance.StatusPresent, got.Status)
	assert.Equal(t, 540, got.WorkedMinutes)
}

func TestFinalizeOpenForDate_OvernightCappedAtEndOfDay(t *testing.T) {
	svc, attRepo, _, _ := newFixture()
	row := seedOpenRow(attRepo, "adv-1", "night", day(13),
		time.Date(2025, 8, 13, 22, 0, 0, 0, time.UTC), attendance.StatusOpen)

	count, err := svc.FinalizeOpenForDate(context.Background(), day(13))

	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got := attRepo.rows[row.ID]
	require.NotNil(t, got.CheckOut)
	assert.Equal(t, time.Date(2025, 8, 13, 23, 59, 59, 0, time.UTC), got.CheckOut.UTC())
	assert.Equal(t, attendance.StatusHalfDay, got.Status)
}

func TestFinalizeOpenForDate_PreservesPendingApproval(t *testing.T) {
	svc, attRepo, _, _ := newFixture()
	row := seedOpenRow(attRepo, "adv-1", "day", day(13),
		time.Date(2025, 8, 13, 9, 30, 0, 0, time.UTC), attendance.StatusPendingApproval)

	_, err := svc.FinalizeOpenForDate(context.Background(), day(13))

	require.NoError(t, err)
	got := attRepo.rows[row.ID]
	assert.Equal(t, attendance.StatusPendingApproval, got.Status)
	assert.Equal(t, 510, got.WorkedMinutes)
	assert.Equal(t, 15, got.LateMinutes)
}

func TestFinalizeOpenForDate_SecondRunIsNoOp(t *testing.T) {
	svc, attRepo, _, _ := newFixture()
	seedOpenRow(attRepo, "adv-1", "day", day(13),
		time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC), attendance.StatusOpen)

	first, err := svc.FinalizeOpenForDate(context.Background(), day(13))
	require.NoError(t, err)
	require.Equal(t, 1, first)

	second, err := svc.FinalizeOpenForDate(context.Background(), day(13))
	require.NoError(t, err)
	assert.Equal(t, 0, second)
}

func TestFinalizeOpenForDate_LeavesPunchlessRowsAlone(t *testing.T) {
	svc, attRepo, _, _ := newFixture()
	row, _ := attRepo.Create(context.Background(), attendance.Attendance{
		AdvisorID: "adv-1", StoreID: "store-1", ShiftID: "day",
		Date: day(13), Status: attendance.StatusAbsent,
	})

	count, err := svc.FinalizeOpenForDate(context.Background(), day(13))

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Nil(t, attRepo.rows[row.ID].CheckOut)
}

func TestMarkAbsentForDate_CreatesRowsForNoShows(t *testing.T) {
	svc, attRepo, resolver, userRepo := newFixture()
	dayShift := shift.Shift{ID: "day", IsActive: true, StartTime: wallClock(9, 0), EndTime: wallClock(18, 0)}
	userRepo.advisors = []user.User{
		{ID: "adv-1", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
		{ID: "adv-2", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
		{ID: "adv-off", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
	}
	resolver.planned = map[string]*shift.Shift{
		"adv-1": &dayShift,
		"adv-2": &dayShift,
		// adv-off has a day off: no planned shift.
	}

	// adv-1 already punched.
	seedOpenRow(attRepo, "adv-1", "day", day(13),
		time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC), attendance.StatusOpen)

	created, err := svc.MarkAbsentForDate(context.Background(), day(13))

	require.NoError(t, err)
	assert.Equal(t, 1, created)

	absent, err := attRepo.GetByKey(context.Background(), "adv-2", day(13), "day")
	require.NoError(t, err)
	require.NotNil(t, absent)
	assert.Equal(t, attendance.StatusAbsent, absent.Status)

	none, err := attRepo.GetByKey(context.Background(), "adv-off", day(13), "day")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMarkAbsentForDate_SecondRunIsNoOp(t *testing.T) {
	svc, _, resolver, userRepo := newFixture()
	dayShift := shift.Shift{ID: "day", IsActive: true, StartTime: wallClock(9, 0), EndTime: wallClock(18, 0)}
	userRepo.advisors = []user.User{
		{ID: "adv-1", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
	}
	resolver.planned = map[string]*shift.Shift{"adv-1": &dayShift}

	first, err := svc.MarkAbsentForDate(context.Background(), day(13))
	require.NoError(t, err)
	require.Equal(t, 1, first)

	second, err := svc.MarkAbsentForDate(context.Background(), day(13))
	require.NoError(t, err)
	assert.Equal(t, 0, second)
}

func TestAutocloseForDate_ComposesBothPasses(t *testing.T) {
	svc, attRepo, resolver, userRepo := newFixture()
	dayShift := shift.Shift{ID: "day", IsActive: true, StartTime: wallClock(9, 0), EndTime: wallClock(18, 0)}
	userRepo.advisors = []user.User{
		{ID: "adv-1", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
		{ID: "adv-2", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
	}
	resolver.planned = map[string]*shift.Shift{"adv-1": &dayShift, "adv-2": &dayShift}

	seedOpenRow(attRepo, "adv-1", "day", day(13),
		time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC), attendance.StatusOpen)

	result, err := svc.AutocloseForDate(context.Background(), day(13))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Finalized)
	assert.Equal(t, 1, result.AbsentsCreated)
}
