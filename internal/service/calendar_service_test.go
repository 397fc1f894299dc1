package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCalendarRepo struct {
	mu      sync.Mutex
	events  map[uuid.UUID]*model.CalendarEvent
	types   []model.CalendarType
	actions []model.CalendarAction
}

func newFakeCalendarRepo() *fakeCalendarRepo {
	return &fakeCalendarRepo{events: map[uuid.UUID]*model.CalendarEvent{}}
}

func (f *fakeCalendarRepo) CreateEvent(_ context.Context, event *model.CalendarEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeCalendarRepo) UpdateEvent(_ context.Context, event *model.CalendarEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeCalendarRepo) DeleteEvent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.events, id)
	return nil
}

func (f *fakeCalendarRepo) FindEventByID(_ context.Context, id uuid.UUID) (*model.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeCalendarRepo) ListEvents(_ context.Context, filter repository.CalendarEventFilter) ([]model.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CalendarEvent
	for _, e := range f.events {
		if filter.VisibleTo != "" && !e.Shared && e.UserID.String() != filter.VisibleTo {
			continue
		}
		if filter.UserID != "" && e.UserID.String() != filter.UserID {
			continue
		}
		if filter.From != nil && e.StartAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !e.StartAt.Before(*filter.To) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeCalendarRepo) ListTypes(context.Context) ([]model.CalendarType, error) {
	return f.types, nil
}

func (f *fakeCalendarRepo) ListActions(context.Context) ([]model.CalendarAction, error) {
	return f.actions, nil
}

func newCalendarServiceForTest() (CalendarService, *fakeCalendarRepo, *fakeActivityRepo, *fakeNotifier) {
	repo := newFakeCalendarRepo()
	activityRepo := &fakeActivityRepo{}
	notifier := &fakeNotifier{}
	svc := NewCalendarService(repo, NewActivityService(activityRepo, zap.NewNop()), notifier)
	return svc, repo, activityRepo, notifier
}

func TestCreateEventComputesEndFromDuration(t *testing.T) {
	svc, _, _, notifier := newCalendarServiceForTest()
	userID := uuid.New()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	duration := 90

	event, err := svc.CreateEvent(context.Background(), userID, CalendarEventRequest{
		StartAt:         start,
		DurationMinutes: &duration,
	}, RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, event.EndAt)
	assert.Equal(t, start.Add(90*time.Minute), *event.EndAt)
	assert.Equal(t, model.EventPlanned, event.State)
	assert.Equal(t, []string{"calendar.created"}, notifier.events)
}

func TestCreateEventExplicitEndWinsOverDuration(t *testing.T) {
	svc, _, _, _ := newCalendarServiceForTest()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	duration := 15

	event, err := svc.CreateEvent(context.Background(), uuid.New(), CalendarEventRequest{
		StartAt:         start,
		EndAt:           &end,
		DurationMinutes: &duration,
	}, RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, event.EndAt)
	assert.Equal(t, end, *event.EndAt)
	require.NotNil(t, event.DurationMinutes)
	assert.Equal(t, 120, *event.DurationMinutes)
}

func TestCreateEventRejectsEndBeforeStart(t *testing.T) {
	svc, _, _, _ := newCalendarServiceForTest()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := svc.CreateEvent(context.Background(), uuid.New(), CalendarEventRequest{
		StartAt: start,
		EndAt:   &end,
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCreateEventRejectsUnknownState(t *testing.T) {
	svc, _, _, _ := newCalendarServiceForTest()

	_, err := svc.CreateEvent(context.Background(), uuid.New(), CalendarEventRequest{
		StartAt: time.Now(),
		State:   "postponed",
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestListEventsSharedVisibility(t *testing.T) {
	svc, repo, _, _ := newCalendarServiceForTest()
	ctx := context.Background()

	owner := uuid.New()
	colleague := uuid.New()
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateEvent(ctx, &model.CalendarEvent{UserID: owner, StartAt: start, Shared: false, State: model.EventPlanned}))
	require.NoError(t, repo.CreateEvent(ctx, &model.CalendarEvent{UserID: owner, StartAt: start, Shared: true, State: model.EventPlanned}))

	// the owner sees both
	mine, err := svc.ListEvents(ctx, CalendarEventQuery{VisibleTo: owner.String()})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// a colleague only sees the shared one
	theirs, err := svc.ListEvents(ctx, CalendarEventQuery{VisibleTo: colleague.String()})
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
	shared, _ := theirs[0].Extended["shared"].(bool)
	assert.True(t, shared)
}

func TestDeleteEventRecordsActivityAndNotifies(t *testing.T) {
	svc, repo, activityRepo, notifier := newCalendarServiceForTest()
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, uuid.New(), CalendarEventRequest{
		StartAt:     time.Now(),
		Description: "Visita à ACME",
	}, RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, event.ID, RequestMeta{}))

	descriptions := activityRepo.descriptions()
	assert.Equal(t, "Removeu evento: Visita à ACME", descriptions[len(descriptions)-1])
	assert.Equal(t, []string{"calendar.created", "calendar.deleted"}, notifier.events)

	_, err = repo.FindEventByID(ctx, event.ID)
	assert.Error(t, err)
}

func TestFullCalendarMapping(t *testing.T) {
	svc, repo, _, _ := newCalendarServiceForTest()
	ctx := context.Background()

	owner := uuid.New()
	start := time.Date(2026, 9, 2, 9, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	require.NoError(t, repo.CreateEvent(ctx, &model.CalendarEvent{
		UserID:  owner,
		StartAt: start,
		EndAt:   &end,
		Shared:  true,
		State:   model.EventConfirmed,
	}))

	events, err := svc.ListEvents(ctx, CalendarEventQuery{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	fc := events[0]
	assert.Equal(t, start.Format(time.RFC3339), fc.Start)
	require.NotNil(t, fc.End)
	assert.Equal(t, end.Format(time.RFC3339), *fc.End)
	assert.False(t, fc.AllDay)
	assert.Contains(t, fc.ClassNames, "event-confirmed")
	assert.Equal(t, owner.String(), fc.Extended["user_id"])
}
