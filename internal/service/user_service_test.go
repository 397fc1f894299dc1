package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"backoffice/internal/model"
	"backoffice/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*model.User
	tokens map[string]*model.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  map[uuid.UUID]*model.User{},
		tokens: map[string]*model.RefreshToken{},
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeUserRepo) DeleteExpiredRefreshTokens(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(f.tokens, k)
		}
	}
	return nil
}

func newUserServiceForTest() (UserService, *fakeUserRepo, *fakeRoleRepo, *fakeActivityRepo) {
	userRepo := newFakeUserRepo()
	roleRepo := newFakeRoleRepo()
	activityRepo := &fakeActivityRepo{}
	svc := NewUserService(userRepo, roleRepo, NewActivityService(activityRepo, zap.NewNop()))
	return svc, userRepo, roleRepo, activityRepo
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, repo, _, _ := newUserServiceForTest()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{
		Name:     "Ana",
		Email:    "Ana@Example.com",
		Password: "segredo1",
	}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "segredo1", stored.Password)
	assert.NotEmpty(t, stored.Password)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserRequest{Name: "Outra", Email: "ANA@example.com", Password: "segredo2"}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	missing := uuid.New()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "segredo1",
		RoleID:   &missing,
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestLoginIssuesTokensAndRecordsActivity(t *testing.T) {
	svc, repo, _, activityRepo := newUserServiceForTest()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	tokens, user, err := svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "segredo1"},
		RequestMeta{UserAgent: "Mozilla/5.0 (iPhone)"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Ana", user.Name)

	require.Len(t, repo.tokens, 1)

	descriptions := activityRepo.descriptions()
	assert.Contains(t, descriptions, "Iniciou sessão")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "errada"}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, repo, _, _ := newUserServiceForTest()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, repo.Update(ctx, stored))

	_, _, err = svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.Error(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	tokens, _, err := svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// the old token is gone
	_, err = svc.Refresh(ctx, tokens.RefreshToken)
	require.Error(t, err)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, repo, _, _ := newUserServiceForTest()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, repo.SaveRefreshToken(ctx, &model.RefreshToken{
		UserID:    created.ID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err = svc.Refresh(ctx, "stale")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDeleteUserCannotDeleteSelf(t *testing.T) {
	svc, _, _, _ := newUserServiceForTest()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "segredo1"}, RequestMeta{})
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID, RequestMeta{CauserID: &created.ID})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
