package service

import (
	"context"
	"strings"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarNotifier pushes calendar changes to connected clients. The
// websocket hub satisfies it.
type CalendarNotifier interface {
	Notify(event string, payload interface{})
}

type CalendarEventRequest struct {
	EntityID         *uuid.UUID `json:"entity_id"`
	CalendarTypeID   *uuid.UUID `json:"calendar_type_id"`
	CalendarActionID *uuid.UUID `json:"calendar_action_id"`
	StartAt          time.Time  `json:"start_at" binding:"required"`
	EndAt            *time.Time `json:"end_at"`
	DurationMinutes  *int       `json:"duration_minutes"`
	Shared           bool       `json:"shared"`
	Knowledge        string     `json:"knowledge"`
	Description      string     `json:"description"`
	State            string     `json:"state"`
}

type CalendarEventQuery struct {
	EntityID  string
	UserID    string
	VisibleTo string
	From      *time.Time
	To        *time.Time
}

// FullCalendarEvent is the shape the frontend calendar component consumes
type FullCalendarEvent struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Start      string                 `json:"start"`
	End        *string                `json:"end,omitempty"`
	AllDay     bool                   `json:"allDay"`
	ClassNames []string               `json:"classNames,omitempty"`
	Extended   map[string]interface{} `json:"extendedProps"`
}

type CalendarService interface {
	CreateEvent(ctx context.Context, userID uuid.UUID, req CalendarEventRequest, meta RequestMeta) (*model.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req CalendarEventRequest, meta RequestMeta) (*model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, meta RequestMeta) error
	GetEvent(ctx context.Context, id uuid.UUID) (*model.CalendarEvent, error)
	ListEvents(ctx context.Context, q CalendarEventQuery) ([]FullCalendarEvent, error)
	ListTypes(ctx context.Context) ([]model.CalendarType, error)
	ListActions(ctx context.Context) ([]model.CalendarAction, error)
}

type calendarService struct {
	events   repository.CalendarRepository
	activity ActivityService
	notifier CalendarNotifier
}

func NewCalendarService(events repository.CalendarRepository, activity ActivityService, notifier CalendarNotifier) CalendarService {
	return &calendarService{events: events, activity: activity, notifier: notifier}
}

var eventStates = map[string]bool{
	model.EventPlanned:   true,
	model.EventConfirmed: true,
	model.EventDone:      true,
	model.EventCancelled: true,
}

// resolveEnd fills EndAt from the duration when only one of the two is given.
// An explicit end wins over a duration.
func resolveEnd(start time.Time, end *time.Time, duration *int) (*time.Time, *int, error) {
	if end != nil {
		if !end.After(start) {
			return nil, nil, apperror.Validation("event end must be after start")
		}
		minutes := int(end.Sub(start) / time.Minute)
		return end, &minutes, nil
	}
	if duration != nil {
		if *duration <= 0 {
			return nil, nil, apperror.Validation("duration must be positive")
		}
		e := start.Add(time.Duration(*duration) * time.Minute)
		return &e, duration, nil
	}
	return nil, nil, nil
}

func (s *calendarService) CreateEvent(ctx context.Context, userID uuid.UUID, req CalendarEventRequest, meta RequestMeta) (*model.CalendarEvent, error) {
	state := req.State
	if state == "" {
		state = model.EventPlanned
	}
	if !eventStates[state] {
		return nil, apperror.Validation("unknown event state")
	}

	end, duration, err := resolveEnd(req.StartAt, req.EndAt, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	event := &model.CalendarEvent{
		UserID:           userID,
		EntityID:         req.EntityID,
		CalendarTypeID:   req.CalendarTypeID,
		CalendarActionID: req.CalendarActionID,
		StartAt:          req.StartAt,
		EndAt:            end,
		DurationMinutes:  duration,
		Shared:           req.Shared,
		Knowledge:        req.Knowledge,
		Description:      req.Description,
		State:            state,
	}
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	created, err := s.events.FindEventByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogCalendar,
		Meta:        meta,
		Subject:     &Subject{Kind: "calendar_event", ID: created.ID.String()},
		Description: "Criou evento: " + eventTitle(created),
	})
	s.notifier.Notify("calendar.created", created)

	return created, nil
}

func (s *calendarService) UpdateEvent(ctx context.Context, id uuid.UUID, req CalendarEventRequest, meta RequestMeta) (*model.CalendarEvent, error) {
	event, err := s.events.FindEventByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("event not found", err)
		}
		return nil, err
	}

	state := req.State
	if state == "" {
		state = event.State
	}
	if !eventStates[state] {
		return nil, apperror.Validation("unknown event state")
	}

	end, duration, err := resolveEnd(req.StartAt, req.EndAt, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	event.EntityID = req.EntityID
	event.CalendarTypeID = req.CalendarTypeID
	event.CalendarActionID = req.CalendarActionID
	event.StartAt = req.StartAt
	event.EndAt = end
	event.DurationMinutes = duration
	event.Shared = req.Shared
	event.Knowledge = req.Knowledge
	event.Description = req.Description
	event.State = state
	// preloads must not leak back into the row
	event.Entity = nil
	event.Type = nil
	event.Action = nil
	event.User = nil

	if err := s.events.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}

	updated, err := s.events.FindEventByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogCalendar,
		Meta:        meta,
		Subject:     &Subject{Kind: "calendar_event", ID: updated.ID.String()},
		Description: "Atualizou evento: " + eventTitle(updated),
	})
	s.notifier.Notify("calendar.updated", updated)

	return updated, nil
}

func (s *calendarService) DeleteEvent(ctx context.Context, id uuid.UUID, meta RequestMeta) error {
	event, err := s.events.FindEventByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("event not found", err)
		}
		return err
	}

	// recorded first so the trail keeps the title even if the row is gone
	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogCalendar,
		Meta:        meta,
		Subject:     &Subject{Kind: "calendar_event", ID: event.ID.String()},
		Description: "Removeu evento: " + eventTitle(event),
	})

	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.notifier.Notify("calendar.deleted", map[string]string{"id": id.String()})
	return nil
}

func (s *calendarService) GetEvent(ctx context.Context, id uuid.UUID) (*model.CalendarEvent, error) {
	event, err := s.events.FindEventByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("event not found", err)
		}
		return nil, err
	}
	return event, nil
}

func (s *calendarService) ListEvents(ctx context.Context, q CalendarEventQuery) ([]FullCalendarEvent, error) {
	events, err := s.events.ListEvents(ctx, repository.CalendarEventFilter{
		UserID:    q.UserID,
		EntityID:  q.EntityID,
		VisibleTo: q.VisibleTo,
		From:      q.From,
		To:        q.To,
	})
	if err != nil {
		return nil, err
	}

	res := make([]FullCalendarEvent, 0, len(events))
	for i := range events {
		res = append(res, toFullCalendar(&events[i]))
	}
	return res, nil
}

func (s *calendarService) ListTypes(ctx context.Context) ([]model.CalendarType, error) {
	return s.events.ListTypes(ctx)
}

func (s *calendarService) ListActions(ctx context.Context) ([]model.CalendarAction, error) {
	return s.events.ListActions(ctx)
}

func eventTitle(e *model.CalendarEvent) string {
	parts := make([]string, 0, 2)
	if e.Type != nil {
		parts = append(parts, e.Type.Name)
	}
	if e.Entity != nil {
		parts = append(parts, e.Entity.Name)
	}
	if len(parts) == 0 {
		if e.Description != "" {
			return e.Description
		}
		return "Evento"
	}
	return strings.Join(parts, " - ")
}

func toFullCalendar(e *model.CalendarEvent) FullCalendarEvent {
	extended := map[string]interface{}{
		"user_id":     e.UserID.String(),
		"shared":      e.Shared,
		"state":       e.State,
		"knowledge":   e.Knowledge,
		"description": e.Description,
	}
	if e.User != nil {
		extended["user_name"] = e.User.Name
	}
	if e.EntityID != nil {
		extended["entity_id"] = e.EntityID.String()
	}
	if e.Entity != nil {
		extended["entity_name"] = e.Entity.Name
	}
	if e.CalendarTypeID != nil {
		extended["calendar_type_id"] = e.CalendarTypeID.String()
	}
	if e.CalendarActionID != nil {
		extended["calendar_action_id"] = e.CalendarActionID.String()
	}
	if e.DurationMinutes != nil {
		extended["duration_minutes"] = *e.DurationMinutes
	}

	fc := FullCalendarEvent{
		ID:         e.ID.String(),
		Title:      eventTitle(e),
		Start:      e.StartAt.Format(time.RFC3339),
		AllDay:     e.EndAt == nil,
		ClassNames: []string{"event-" + e.State},
		Extended:   extended,
	}
	if e.EndAt != nil {
		end := e.EndAt.Format(time.RFC3339)
		fc.End = &end
	}
	return fc
}
