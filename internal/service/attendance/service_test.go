package attendance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/attendance-backend-go/internal/domain/attendance"
	"github.com/storeops/attendance-backend-go/internal/domain/idempotency"
	"github.com/storeops/attendance-backend-go/internal/domain/request"
	"github.com/storeops/attendance-backend-go/internal/domain/shift"
	"github.com/storeops/attendance-backend-go/internal/domain/store"
	"github.com/storeops/attendance-backend-go/internal/domain/user"
)

type fakeAttendanceRepo struct {
	rows   map[string]attendance.Attendance
	nextID int
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: map[string]attendance.Attendance{}}
}

func (f *fakeAttendanceRepo) key(advisorID string, date time.Time, shiftID string) string {
	return advisorID + "|" + date.Format("2006-01-02") + "|" + shiftID
}

func (f *fakeAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	for _, existing := range f.rows {
		if f.key(existing.AdvisorID, existing.Date, existing.ShiftID) == f.key(a.AdvisorID, a.Date, a.ShiftID) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
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
	existing, ok := f.rows[a.ID]
	if !ok || existing.CheckIn != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}
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
	var out []attendance.Attendance
	for _, a := range f.rows {
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) ListByAdvisor(_ context.Context, advisorID string, _ attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	var out []attendance.Attendance
	for _, a := range f.rows {
		if a.AdvisorID == advisorID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

type fakeRequestRepo struct {
	requests map[string]request.AttendanceRequest
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[string]request.AttendanceRequest{}}
}

func (f *fakeRequestRepo) Create(_ context.Context, r request.AttendanceRequest) (request.AttendanceRequest, error) {
	f.nextID++
	r.ID = fmt.Sprintf("req-%d", f.nextID)
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (request.AttendanceRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return request.AttendanceRequest{}, request.ErrRequestNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) HasPending(_ context.Context, attendanceID string, t request.Type) (bool, error) {
	for _, r := range f.requests {
		if r.AttendanceID == attendanceID && r.Type == t && r.Status == request.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestRepo) ListPendingByAttendance(_ context.Context, attendanceID string) ([]request.AttendanceRequest, error) {
	var out []request.AttendanceRequest
	for _, r := range f.requests {
		if r.AttendanceID == attendanceID && r.Status == request.StatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) List(_ context.Context, _ request.RequestFilter) ([]request.AttendanceRequest, int64, error) {
	var out []request.AttendanceRequest
	for _, r := range f.requests {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) ListByRequester(_ context.Context, requestedBy string, _ request.RequestFilter) ([]request.AttendanceRequest, int64, error) {
	var out []request.AttendanceRequest
	for _, r := range f.requests {
		if r.RequestedBy == requestedBy {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) Update(_ context.Context, r request.AttendanceRequest) error {
	if _, ok := f.requests[r.ID]; !ok {
		return request.ErrRequestNotFound
	}
	f.requests[r.ID] = r
	return nil
}

func (f *fakeRequestRepo) ofType(t request.Type) []request.AttendanceRequest {
	var out []request.AttendanceRequest
	for _, r := range f.requests {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

type fakeIdempotencyRepo struct {
	records map[string]idempotency.Record

	// hideNext makes the next Get miss even when a record exists, standing
	// in for a concurrent writer whose commit this goroutine's first
	// lookup did not see.
	hideNext bool
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{records: map[string]idempotency.Record{}}
}

func idemKey(key, actorID, endpoint string) string {
	return key + "|" + actorID + "|" + endpoint
}

func (f *fakeIdempotencyRepo) Get(_ context.Context, key, actorID, endpoint string) (*idempotency.Record, error) {
	if key == "" {
		return nil, nil
	}
	if f.hideNext {
		f.hideNext = false
		return nil, nil
	}
	if rec, ok := f.records[idemKey(key, actorID, endpoint)]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (f *fakeIdempotencyRepo) Remember(_ context.Context, key, actorID, endpoint, objectID string) (bool, error) {
	if key == "" {
		return true, nil
	}
	k := idemKey(key, actorID, endpoint)
	if _, ok := f.records[k]; ok {
		return false, nil
	}
	f.records[k] = idempotency.Record{Key: key, ActorID: actorID, Endpoint: endpoint, ObjectID: objectID}
	return true, nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) ListActiveAdvisors(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.CanPunch() {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeStoreRepo struct {
	fence *store.Geofence
}

func (f *fakeStoreRepo) GetByID(_ context.Context, id string) (store.Store, error) {
	return store.Store{ID: id, Name: "Store", IsActive: true}, nil
}

func (f *fakeStoreRepo) GetGeofence(_ context.Context, _ string) (*store.Geofence, error) {
	return f.fence, nil
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
	shift *shift.Shift
}

func (f *fakeResolver) ResolvePlannedShift(_ context.Context, _ string, _ time.Time) (*shift.Shift, error) {
	return f.shift, nil
}

type fakeUploader struct {
	uploads int
}

func (f *fakeUploader) UploadPunchProof(_ context.Context, advisorID string, _ io.Reader, header *multipart.FileHeader) (string, error) {
	f.uploads++
	return "http://localhost:8080/uploads/punches/" + advisorID + "/" + header.Filename, nil
}

// fakeTx mimics transactional rollback by restoring the repo maps when fn
// fails.
type fakeTx struct {
	attRepo  *fakeAttendanceRepo
	reqRepo  *fakeRequestRepo
	idemRepo *fakeIdempotencyRepo
}

func (t *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	rows := maps.Clone(t.attRepo.rows)
	requests := maps.Clone(t.reqRepo.requests)
	records := maps.Clone(t.idemRepo.records)
	if err := fn(ctx); err != nil {
		t.attRepo.rows = rows
		t.reqRepo.requests = requests
		t.idemRepo.records = records
		return err
	}
	return nil
}

type punchFixture struct {
	svc       *Service
	attRepo   *fakeAttendanceRepo
	reqRepo   *fakeRequestRepo
	idemRepo  *fakeIdempotencyRepo
	storeRepo *fakeStoreRepo
	shiftRepo *fakeShiftRepo
	resolver  *fakeResolver
}

func strPtr(s string) *string { return &s }

func wallClock(hour, minute int) time.Time {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)
}

func dayShift() shift.Shift {
	return shift.Shift{
		ID: "day", Name: "Day", IsActive: true,
		StartTime: wallClock(9, 0), EndTime: wallClock(18, 0),
	}
}

func newPunchFixture(t *testing.T) *punchFixture {
	t.Helper()

	day := dayShift()
	f := &punchFixture{
		attRepo:  newFakeAttendanceRepo(),
		reqRepo:  newFakeRequestRepo(),
		idemRepo: newFakeIdempotencyRepo(),
		storeRepo: &fakeStoreRepo{fence: &store.Geofence{
			StoreID: "store-1", Latitude: -6.2, Longitude: 106.8, RadiusMeters: 100, IsActive: true,
		}},
		shiftRepo: &fakeShiftRepo{shifts: map[string]shift.Shift{"day": day}},
		resolver:  &fakeResolver{shift: &day},
	}
	userRepo := &fakeUserRepo{users: map[string]user.User{
		"adv-1": {ID: "adv-1", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
		"adv-2": {ID: "adv-2", Role: user.RoleAdvisor, StoreID: strPtr("store-1"), IsActive: true},
	}}

	f.svc = NewService(
		f.attRepo, f.reqRepo, f.idemRepo, userRepo, f.storeRepo, f.shiftRepo,
		f.resolver, &fakeUploader{},
		&fakeTx{attRepo: f.attRepo, reqRepo: f.reqRepo, idemRepo: f.idemRepo},
		attendance.DefaultMetricRules(), time.UTC,
	)
	return f
}

func (f *punchFixture) at(t time.Time) {
	f.svc.nowFn = func() time.Time { return t }
}

func selfie() (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{Filename: "selfie.jpg", Size: 1024}
	return nopFile{bytes.NewReader([]byte("jpeg"))}, header
}

type nopFile struct{ *bytes.Reader }

func (nopFile) Close() error { return nil }

func checkInReq(key string) *attendance.CheckInRequest {
	file, header := selfie()
	return &attendance.CheckInRequest{
		Latitude:       -6.2,
		Longitude:      106.8,
		IdempotencyKey: key,
		File:           file,
		FileHeader:     header,
	}
}

func TestCheckIn_OnTimeInsideFence(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 5, 0, 0, time.UTC))

	resp, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusOpen), resp.Status)
	assert.Equal(t, "day", resp.ShiftID)
	assert.Equal(t, "2025-08-13", resp.Date)
	assert.Empty(t, f.reqRepo.requests)
}

func TestCheckIn_ExactlyAtGraceIsOnTime(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 15, 0, 0, time.UTC))

	resp, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusOpen), resp.Status)
	assert.Empty(t, f.reqRepo.ofType(request.TypeLate))
}

func TestCheckIn_OneSecondPastGraceRaisesLateRequest(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 15, 1, 0, time.UTC))

	resp, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPendingApproval), resp.Status)

	lates := f.reqRepo.ofType(request.TypeLate)
	require.Len(t, lates, 1)
	assert.Equal(t, request.StatusPending, lates[0].Status)
	assert.Equal(t, resp.ID, lates[0].AttendanceID)
}

func TestCheckIn_OutsideGeofenceRaisesRequest(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))

	req := checkInReq("")
	req.Latitude = -6.3 // ~11km from the fence center
	resp, err := f.svc.CheckIn(context.Background(), "adv-1", req)

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPendingApproval), resp.Status)
	require.Len(t, f.reqRepo.ofType(request.TypeOutsideGeofence), 1)
}

func TestCheckIn_NoFenceConfiguredSkipsGeofenceCheck(t *testing.T) {
	f := newPunchFixture(t)
	f.storeRepo.fence = nil
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))

	req := checkInReq("")
	req.Latitude = 50.0
	resp, err := f.svc.CheckIn(context.Background(), "adv-1", req)

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusOpen), resp.Status)
	assert.Empty(t, f.reqRepo.requests)
}

func TestCheckIn_IdempotentReplayReturnsSameRow(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))

	first, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq("punch-1"))
	require.NoError(t, err)

	second, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq("punch-1"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.attRepo.rows, 1)
}

func TestCheckIn_ReplayAfterMissedLookupServesRecordedRow(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))

	first, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq("punch-1"))
	require.NoError(t, err)

	// A second punch with the same key whose initial lookup raced past the
	// first one's commit must still end as a replay, not an error.
	f.idemRepo.hideNext = true
	second, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq("punch-1"))

	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.attRepo.rows, 1)
	assert.Len(t, f.idemRepo.records, 1)
}

func TestCheckIn_SecondPunchSameShiftRejected(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))

	_, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	_, err = f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckIn_NoPlannedShift(t *testing.T) {
	f := newPunchFixture(t)
	f.resolver.shift = nil
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))

	_, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))

	assert.ErrorIs(t, err, attendance.ErrNoPlannedShift)
}

func TestCheckIn_StampsPreCreatedAbsentRow(t *testing.T) {
	f := newPunchFixture(t)
	date := time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)
	_, err := f.attRepo.CreateIfMissing(context.Background(), attendance.Attendance{
		AdvisorID: "adv-1", StoreID: "store-1", ShiftID: "day", Date: date,
		Status: attendance.StatusAbsent,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	resp, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusOpen), resp.Status)
	assert.Len(t, f.attRepo.rows, 1)
}

func TestCheckIn_MissingSelfieRejected(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))

	req := checkInReq("")
	req.FileHeader = nil
	_, err := f.svc.CheckIn(context.Background(), "adv-1", req)

	require.Error(t, err)
}

func checkOutReq(attendanceID string, otMinutes int) *attendance.CheckOutRequest {
	file, header := selfie()
	return &attendance.CheckOutRequest{
		AttendanceID:     attendanceID,
		Latitude:         -6.2,
		Longitude:        106.8,
		OTRequestMinutes: otMinutes,
		File:             file,
		FileHeader:       header,
	}
}

func TestCheckOut_FullDayIsPresent(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	f.at(time.Date(2025, 8, 13, 18, 0, 0, 0, time.UTC))
	out, err := f.svc.CheckOut(context.Background(), "adv-1", checkOutReq(in.ID, 0))

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), out.Status)
	assert.Equal(t, 540, out.WorkedMinutes)
	assert.Equal(t, 0, out.LateMinutes)
	assert.Equal(t, 0, out.EarlyOutMinutes)
}

func TestCheckOut_ShortDayIsHalfDay(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	f.at(time.Date(2025, 8, 13, 13, 0, 0, 0, time.UTC))
	out, err := f.svc.CheckOut(context.Background(), "adv-1", checkOutReq(in.ID, 0))

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusHalfDay), out.Status)
	assert.Equal(t, 240, out.WorkedMinutes)
	assert.Equal(t, 300, out.EarlyOutMinutes)
}

func TestCheckOut_PendingApprovalIsSticky(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 30, 0, 0, time.UTC)) // late check-in
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)
	require.Equal(t, string(attendance.StatusPendingApproval), in.Status)

	f.at(time.Date(2025, 8, 13, 18, 0, 0, 0, time.UTC))
	out, err := f.svc.CheckOut(context.Background(), "adv-1", checkOutReq(in.ID, 0))

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPendingApproval), out.Status)
	assert.Equal(t, 510, out.WorkedMinutes)
	assert.Equal(t, 15, out.LateMinutes)
}

func TestCheckOut_RaisesOvertimeRequest(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	f.at(time.Date(2025, 8, 13, 20, 0, 0, 0, time.UTC))
	_, err = f.svc.CheckOut(context.Background(), "adv-1", checkOutReq(in.ID, 120))
	require.NoError(t, err)

	ots := f.reqRepo.ofType(request.TypeOvertime)
	require.Len(t, ots, 1)
	require.NotNil(t, ots[0].Meta.RequestedMinutes)
	assert.Equal(t, 120, *ots[0].Meta.RequestedMinutes)
}

func TestCheckOut_NotOpen(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	f.at(time.Date(2025, 8, 13, 18, 0, 0, 0, time.UTC))
	_, err = f.svc.CheckOut(context.Background(), "adv-1", checkOutReq(in.ID, 0))
	require.NoError(t, err)

	_, err = f.svc.CheckOut(context.Background(), "adv-1", checkOutReq(in.ID, 0))
	assert.ErrorIs(t, err, attendance.ErrNotOpenForCheckout)
}

func TestCheckOut_OtherAdvisorsRowRejected(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	_, err = f.svc.CheckOut(context.Background(), "adv-2", checkOutReq(in.ID, 0))
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)
}

func TestCheckOut_IdempotentReplay(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	f.at(time.Date(2025, 8, 13, 18, 0, 0, 0, time.UTC))
	req := checkOutReq(in.ID, 0)
	req.IdempotencyKey = "out-1"
	first, err := f.svc.CheckOut(context.Background(), "adv-1", req)
	require.NoError(t, err)

	replayReq := checkOutReq(in.ID, 0)
	replayReq.IdempotencyKey = "out-1"
	second, err := f.svc.CheckOut(context.Background(), "adv-1", replayReq)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CheckOutTime, second.CheckOutTime)
}

func TestCheckOut_KeyBoundByConcurrentPunchRollsBackAndReplays(t *testing.T) {
	f := newPunchFixture(t)
	f.at(time.Date(2025, 8, 13, 9, 0, 0, 0, time.UTC))
	in, err := f.svc.CheckIn(context.Background(), "adv-1", checkInReq(""))
	require.NoError(t, err)

	// A concurrent checkout already bound the key, but this goroutine's
	// first lookup missed it: the local write must roll back and the
	// recorded row must be served.
	f.idemRepo.records[idemKey("out-9", "adv-1", endpointCheckOut)] = idempotency.Record{
		Key: "out-9", ActorID: "adv-1", Endpoint: endpointCheckOut, ObjectID: in.ID,
	}
	f.idemRepo.hideNext = true

	f.at(time.Date(2025, 8, 13, 18, 0, 0, 0, time.UTC))
	req := checkOutReq(in.ID, 0)
	req.IdempotencyKey = "out-9"
	resp, err := f.svc.CheckOut(context.Background(), "adv-1", req)

	require.NoError(t, err)
	assert.Equal(t, in.ID, resp.ID)
	assert.Nil(t, f.attRepo.rows[in.ID].CheckOut)
}
