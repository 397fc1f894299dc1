package service

import (
	"context"
	"encoding/json"
	"strings"

	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subject identifies the record an activity entry is about
type Subject struct {
	Kind string `json:"kind"` // "entity", "proposal", "role", ...
	ID   string `json:"id"`
}

// RequestMeta carries the actor and request details flowing into every
// activity entry. CauserID is nil for system-triggered actions.
type RequestMeta struct {
	CauserID  *uuid.UUID
	IP        string
	UserAgent string
}

// ActivityEntry is one action to record
type ActivityEntry struct {
	Category    string
	Meta        RequestMeta
	Subject     *Subject
	Description string
	Extra       map[string]interface{}
}

// ActivityQuery narrows and pages the activity listing
type ActivityQuery struct {
	CauserID string
	From     string // inclusive, YYYY-MM-DD
	To       string // inclusive, YYYY-MM-DD
	Search   string
	Page     int
	Limit    int
}

type ActivityLogResponse struct {
	ID          string                 `json:"id"`
	Category    string                 `json:"log_name"`
	CauserID    string                 `json:"causer_id"`
	CauserName  string                 `json:"causer_name"`
	SubjectType string                 `json:"subject_type,omitempty"`
	SubjectID   string                 `json:"subject_id,omitempty"`
	Description string                 `json:"description"`
	Properties  map[string]interface{} `json:"properties"`
	CreatedAt   string                 `json:"created_at"`
}

// ActivityService is the append-only audit trail. Record is fire-and-forget:
// a failed write must never abort the business operation that triggered it.
type ActivityService interface {
	Record(ctx context.Context, entry ActivityEntry)
	Query(ctx context.Context, q ActivityQuery) ([]ActivityLogResponse, int64, error)
}

type activityService struct {
	repo repository.ActivityRepository
	log  *zap.Logger
}

func NewActivityService(repo repository.ActivityRepository, log *zap.Logger) ActivityService {
	return &activityService{repo: repo, log: log}
}

// DeviceLabel classifies a user-agent by first matching substring. The order
// of checks is significant: a UA mentioning both iPhone and Linux is an iPhone.
func DeviceLabel(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "iPhone"):
		return "iPhone"
	case strings.Contains(userAgent, "Macintosh"):
		return "macOS"
	case strings.Contains(userAgent, "Windows"):
		return "Windows"
	case strings.Contains(userAgent, "Linux"):
		return "Linux"
	}
	return "Unknown"
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	properties := map[string]interface{}{
		"ip":         entry.Meta.IP,
		"user_agent": entry.Meta.UserAgent,
	}
	if entry.Meta.UserAgent != "" {
		properties["device"] = DeviceLabel(entry.Meta.UserAgent)
	}
	for k, v := range entry.Extra {
		properties[k] = v
	}

	raw, err := json.Marshal(properties)
	if err != nil {
		s.log.Warn("activity properties not serializable", zap.Error(err))
		raw = []byte("{}")
	}

	row := &model.ActivityLog{
		LogName:     entry.Category,
		CauserID:    entry.Meta.CauserID,
		Description: entry.Description,
		Properties:  string(raw),
	}
	if entry.Subject != nil {
		row.SubjectType = entry.Subject.Kind
		row.SubjectID = entry.Subject.ID
	}

	if err := s.repo.Append(ctx, row); err != nil {
		// Best effort only: losing an audit line must not fail the caller
		s.log.Warn("activity append failed",
			zap.String("category", entry.Category),
			zap.String("description", entry.Description),
			zap.Error(err))
	}
}

func (s *activityService) Query(ctx context.Context, q ActivityQuery) ([]ActivityLogResponse, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}

	logs, total, err := s.repo.List(ctx, repository.ActivityFilter{
		CauserID: q.CauserID,
		From:     q.From,
		To:       q.To,
		Search:   q.Search,
	}, q.Page, q.Limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		causerID := ""
		causerName := "Sistema"
		if l.CauserID != nil {
			causerID = l.CauserID.String()
		}
		if l.Causer != nil {
			causerName = l.Causer.Name
		}

		properties := map[string]interface{}{}
		if l.Properties != "" {
			// tolerate rows written before the property bag existed
			_ = json.Unmarshal([]byte(l.Properties), &properties)
		}

		res = append(res, ActivityLogResponse{
			ID:          l.ID.String(),
			Category:    l.LogName,
			CauserID:    causerID,
			CauserName:  causerName,
			SubjectType: l.SubjectType,
			SubjectID:   l.SubjectID,
			Description: l.Description,
			Properties:  properties,
			CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}
