package service

import (
	"context"
	"testing"
	"time"

	"backoffice/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDeviceLabel(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "iPhone"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", "macOS"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Windows"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "Linux"},
		{"curl/8.0", "Unknown"},
		{"", "Unknown"},
		// iPhone UAs often mention other platforms; first match wins
		{"Mozilla/5.0 (iPhone; like Linux; like Windows)", "iPhone"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeviceLabel(tt.ua), "ua=%q", tt.ua)
	}
}

func TestRecordStoresPropertiesAndDevice(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, zap.NewNop())

	actor := uuid.New()
	svc.Record(context.Background(), ActivityEntry{
		Category:    "vendas",
		Meta:        RequestMeta{CauserID: &actor, IP: "10.0.0.1", UserAgent: "Mozilla/5.0 (Windows NT 10.0)"},
		Subject:     &Subject{Kind: "proposal", ID: "abc"},
		Description: "Criou proposta Nº 7",
		Extra:       map[string]interface{}{"number": 7},
	})

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "vendas", entry.LogName)
	assert.Equal(t, actor, *entry.CauserID)
	assert.Equal(t, "proposal", entry.SubjectType)
	assert.Contains(t, entry.Properties, `"device":"Windows"`)
	assert.Contains(t, entry.Properties, `"ip":"10.0.0.1"`)
	assert.Contains(t, entry.Properties, `"number":7`)
}

func TestRecordFailureDoesNotPanicOrPropagate(t *testing.T) {
	repo := &fakeActivityRepo{appendErr: assert.AnError}
	svc := NewActivityService(repo, zap.NewNop())

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), ActivityEntry{
			Category:    "gestão",
			Description: "Criou Cliente: ACME",
		})
	})
	assert.Empty(t, repo.entries)
}

func TestQueryFiltersAndPages(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, zap.NewNop())
	ctx := context.Background()

	actor := uuid.New()
	other := uuid.New()
	svc.Record(ctx, ActivityEntry{Category: "gestão", Meta: RequestMeta{CauserID: &actor}, Description: "Criou Cliente: ACME"})
	svc.Record(ctx, ActivityEntry{Category: "vendas", Meta: RequestMeta{CauserID: &other}, Description: "Criou proposta Nº 1"})
	svc.Record(ctx, ActivityEntry{Category: "vendas", Meta: RequestMeta{CauserID: &actor}, Description: "Fechou proposta Nº 1"})

	byActor, total, err := svc.Query(ctx, ActivityQuery{CauserID: actor.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	// newest first
	assert.Equal(t, "Fechou proposta Nº 1", byActor[0].Description)

	bySearch, total, err := svc.Query(ctx, ActivityQuery{Search: "proposta"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, bySearch, 2)

	paged, total, err := svc.Query(ctx, ActivityQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}

func TestQueryDateBoundsAreInclusive(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, zap.NewNop())
	ctx := context.Background()

	at := func(stamp, desc string) {
		created, err := time.Parse("2006-01-02 15:04:05", stamp)
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, &model.ActivityLog{
			LogName:     "gestão",
			Description: desc,
			CreatedAt:   created,
		}))
	}
	at("2026-08-30 09:00:00", "Criou Cliente: Antiga")
	at("2026-08-31 23:59:59", "Criou Cliente: Limite")
	at("2026-09-01 00:00:00", "Criou Cliente: Seguinte")

	// an entry written on the "to" day itself still counts
	logs, total, err := svc.Query(ctx, ActivityQuery{From: "2026-08-31", To: "2026-08-31"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "Criou Cliente: Limite", logs[0].Description)

	_, total, err = svc.Query(ctx, ActivityQuery{From: "2026-08-31"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	logs, total, err = svc.Query(ctx, ActivityQuery{To: "2026-08-30"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Criou Cliente: Antiga", logs[0].Description)
}

func TestQueryUnknownCauserShowsSystem(t *testing.T) {
	repo := &fakeActivityRepo{}
	svc := NewActivityService(repo, zap.NewNop())
	ctx := context.Background()

	svc.Record(ctx, ActivityEntry{Category: "acessos", Description: "Sincronizou perfis"})

	logs, _, err := svc.Query(ctx, ActivityQuery{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Sistema", logs[0].CauserName)
	assert.Empty(t, logs[0].CauserID)
}
