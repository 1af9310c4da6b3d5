package alert

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naijasafe/emergency-api/internal/model"
	apperrors "github.com/naijasafe/emergency-api/pkg/errors"
)

type fakeAlertRepo struct {
	alerts map[int64]*model.SOSAlert
	nextID int64
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: map[int64]*model.SOSAlert{}}
}

func (r *fakeAlertRepo) Create(_ context.Context, alert *model.SOSAlert) error {
	r.nextID++
	alert.ID = r.nextID
	alert.Status = model.AlertStatusPending
	cp := *alert
	r.alerts[alert.ID] = &cp
	return nil
}

func (r *fakeAlertRepo) Get(_ context.Context, id int64) (*model.SOSAlert, error) {
	a, ok := r.alerts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAlertRepo) UpdateStatus(_ context.Context, id int64, status model.AlertStatus) error {
	r.alerts[id].Status = status
	return nil
}

func (r *fakeAlertRepo) List(_ context.Context, _ *model.AlertFilter) ([]*model.SOSAlert, error) {
	var out []*model.SOSAlert
	for _, a := range r.alerts {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAlertRepo) CountByStatus(_ context.Context, _ model.AlertStatus) (int, error) {
	return 0, nil
}

func (r *fakeAlertRepo) Count(_ context.Context) (int, error) { return len(r.alerts), nil }

type fakePatientRepo struct {
	byUser map[uuid.UUID]*model.Patient
}

func (r *fakePatientRepo) Create(_ context.Context, _ *model.Patient) error { return nil }
func (r *fakePatientRepo) Get(_ context.Context, _ int64) (*model.Patient, error) {
	return nil, sql.ErrNoRows
}
func (r *fakePatientRepo) GetByUser(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	return r.byUser[userID], nil
}
func (r *fakePatientRepo) Update(_ context.Context, _ *model.Patient) error { return nil }

type fakeEventRepo struct {
	events []*model.AlertEvent
	fail   bool
}

func (r *fakeEventRepo) Create(_ context.Context, event *model.AlertEvent) error {
	if r.fail {
		return assert.AnError
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) GetPending(_ context.Context, _ int) ([]*model.AlertEvent, error) {
	return r.events, nil
}
func (r *fakeEventRepo) MarkProcessed(_ context.Context, _ uuid.UUID) error { return nil }
func (r *fakeEventRepo) MarkRetry(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}
func (r *fakeEventRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type capturedEmail struct {
	to, patientName, mapLink string
}

type fakeEmail struct {
	sent []capturedEmail
}

func (f *fakeEmail) SendEmergency(_ context.Context, to, patientName, mapLink string) error {
	f.sent = append(f.sent, capturedEmail{to, patientName, mapLink})
	return nil
}

func (f *fakeEmail) SendCustom(_ context.Context, _, _, _ string) error { return nil }

type fixture struct {
	svc      Service
	alerts   *fakeAlertRepo
	patients *fakePatientRepo
	events   *fakeEventRepo
	email    *fakeEmail
}

func newFixture() *fixture {
	f := &fixture{
		alerts:   newFakeAlertRepo(),
		patients: &fakePatientRepo{byUser: map[uuid.UUID]*model.Patient{}},
		events:   &fakeEventRepo{},
		email:    &fakeEmail{},
	}
	f.svc = NewService(f.alerts, f.patients, f.events, f.email, "dispatch@example.com", zerolog.Nop())
	return f
}

func coord(v float64) *model.Coordinate {
	c := model.Coordinate(v)
	return &c
}

func TestIngestRequiresCoordinates(t *testing.T) {
	f := newFixture()

	cases := []*model.IngestRequest{
		{},
		{Latitude: coord(6.52)},
		{Longitude: coord(3.37)},
		{Lat: coord(6.52)},
	}
	for _, req := range cases {
		_, err := f.svc.Ingest(context.Background(), req, uuid.Nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.EqualError(t, err, "Missing coordinates")
	}
}

func TestIngestResolvesAlternateKeys(t *testing.T) {
	f := newFixture()

	alert, err := f.svc.Ingest(context.Background(), &model.IngestRequest{
		Lat: coord(6.52),
		Lng: coord(3.37),
	}, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, model.Coordinate(6.52), alert.Latitude)
	assert.Equal(t, model.Coordinate(3.37), alert.Longitude)
	assert.Equal(t, model.AlertStatusPending, alert.Status)
	assert.Nil(t, alert.PatientID)
}

func TestIngestLinksKnownCaller(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	f.patients.byUser[userID] = &model.Patient{ID: 42, UserID: &userID}

	alert, err := f.svc.Ingest(context.Background(), &model.IngestRequest{
		Latitude:  coord(6.52),
		Longitude: coord(3.37),
	}, userID)
	require.NoError(t, err)
	require.NotNil(t, alert.PatientID)
	assert.Equal(t, int64(42), *alert.PatientID)
}

func TestIngestWithoutProfileStaysAnonymous(t *testing.T) {
	f := newFixture()

	alert, err := f.svc.Ingest(context.Background(), &model.IngestRequest{
		Latitude:  coord(6.52),
		Longitude: coord(3.37),
	}, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, alert.PatientID)
}

func TestIngestRecordsEvent(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Ingest(context.Background(), &model.IngestRequest{
		Latitude:  coord(6.52),
		Longitude: coord(3.37),
	}, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, model.EventAlertCreated, f.events.events[0].EventType)
}

func TestIngestSurvivesEventFailure(t *testing.T) {
	f := newFixture()
	f.events.fail = true

	alert, err := f.svc.Ingest(context.Background(), &model.IngestRequest{
		Latitude:  coord(6.52),
		Longitude: coord(3.37),
	}, uuid.Nil)
	require.NoError(t, err)
	assert.NotZero(t, alert.ID)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	alert, err := f.svc.Ingest(context.Background(), &model.IngestRequest{
		Latitude:  coord(6.52),
		Longitude: coord(3.37),
	}, uuid.Nil)
	require.NoError(t, err)

	// any state to any state
	for _, status := range []model.AlertStatus{
		model.AlertStatusResolved,
		model.AlertStatusAcknowledged,
		model.AlertStatusPending,
	} {
		updated, err := f.svc.UpdateStatus(context.Background(), alert.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestUpdateStatusSameStateIsNoOp(t *testing.T) {
	f := newFixture()
	alert, err := f.svc.Ingest(context.Background(), &model.IngestRequest{
		Latitude:  coord(6.52),
		Longitude: coord(3.37),
	}, uuid.Nil)
	require.NoError(t, err)
	eventsBefore := len(f.events.events)

	updated, err := f.svc.UpdateStatus(context.Background(), alert.ID, model.AlertStatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusPending, updated.Status)
	assert.Len(t, f.events.events, eventsBefore, "no status-change event for a no-op")
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.UpdateStatus(context.Background(), 1, "escalated")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.UpdateStatus(context.Background(), 999, model.AlertStatusResolved)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	f := newFixture()

	_, err := f.svc.List(context.Background(), &model.AlertFilter{Status: "bogus"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestNotifyFallsBackWithoutProfile(t *testing.T) {
	f := newFixture()

	recipient, err := f.svc.Notify(context.Background(), &model.NotifyRequest{
		Latitude:  coord(6.5244),
		Longitude: coord(3.3792),
	}, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "dispatch@example.com", recipient)

	require.Len(t, f.email.sent, 1)
	sent := f.email.sent[0]
	assert.Equal(t, "an unidentified caller", sent.patientName)
	assert.Equal(t, "https://www.openstreetmap.org/?mlat=6.524400&mlon=3.379200", sent.mapLink)
}

func TestNotifyUsesEmergencyContact(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	contact := "ngozi@example.com"
	f.patients.byUser[userID] = &model.Patient{
		ID:                    7,
		UserID:                &userID,
		FullName:              "Ada Obi",
		EmergencyContactEmail: &contact,
	}

	recipient, err := f.svc.Notify(context.Background(), &model.NotifyRequest{
		Latitude:  coord(6.52),
		Longitude: coord(3.37),
	}, userID)
	require.NoError(t, err)
	assert.Equal(t, contact, recipient)
	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "Ada Obi", f.email.sent[0].patientName)
}

func TestNotifyRequiresCoordinates(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Notify(context.Background(), &model.NotifyRequest{}, uuid.Nil)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, f.email.sent)
}
