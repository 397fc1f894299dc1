package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"backoffice/internal/middleware"
	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type CreateUserRequest struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"required,email"`
	Phone    string     `json:"phone"`
	Password string     `json:"password" binding:"required,min=6"`
	RoleID   *uuid.UUID `json:"role_id"`
}

type UpdateUserRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email" binding:"omitempty,email"`
	Phone    string     `json:"phone"`
	Password string     `json:"password" binding:"omitempty,min=6"`
	RoleID   *uuid.UUID `json:"role_id"`
	IsActive *bool      `json:"is_active"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse returns user data without the password hash
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	RoleID    *uuid.UUID `json:"role_id"`
	RoleName  string     `json:"role_name"`
	IsActive  bool       `json:"is_active"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

type UserService interface {
	Create(ctx context.Context, req CreateUserRequest, meta RequestMeta) (*UserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest, meta RequestMeta) (*UserResponse, error)
	Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error
	Get(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	List(ctx context.Context, page, limit int) ([]UserResponse, int64, error)

	Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*TokenPair, *UserResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string, meta RequestMeta) error
}

type userService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	activity ActivityService
}

func NewUserService(users repository.UserRepository, roles repository.RoleRepository, activity ActivityService) UserService {
	return &userService{users: users, roles: roles, activity: activity}
}

func toUserResponse(u *model.User) *UserResponse {
	res := &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		RoleID:    u.RoleID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
	if u.Role != nil {
		res.RoleName = u.Role.Name
	}
	return res
}

func (s *userService) resolveRole(ctx context.Context, roleID *uuid.UUID) (*model.Role, error) {
	if roleID == nil {
		return nil, nil
	}
	role, err := s.roles.FindByID(ctx, *roleID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Validation("role does not exist")
		}
		return nil, err
	}
	return role, nil
}

func (s *userService) Create(ctx context.Context, req CreateUserRequest, meta RequestMeta) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperror.Conflict("email already in use", nil)
	}
	if _, err := s.resolveRole(ctx, req.RoleID); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    email,
		Phone:    req.Phone,
		Password: string(hashed),
		RoleID:   req.RoleID,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogAccess,
		Meta:        meta,
		Subject:     &Subject{Kind: "user", ID: user.ID.String()},
		Description: "Criou utilizador: " + user.Name,
	})

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(created), nil
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest, meta RequestMeta) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("user not found", err)
		}
		return nil, err
	}

	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email != user.Email {
			if existing, err := s.users.FindByEmail(ctx, email); err == nil && existing != nil {
				return nil, apperror.Conflict("email already in use", nil)
			}
			user.Email = email
		}
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}
	if req.RoleID != nil {
		if _, err := s.resolveRole(ctx, req.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = req.RoleID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogAccess,
		Meta:        meta,
		Subject:     &Subject{Kind: "user", ID: user.ID.String()},
		Description: "Atualizou utilizador: " + user.Name,
	})

	updated, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(updated), nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID, meta RequestMeta) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperror.NotFound("user not found", err)
		}
		return err
	}
	if meta.CauserID != nil && *meta.CauserID == user.ID {
		return apperror.Validation("users cannot delete their own account")
	}

	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogAccess,
		Meta:        meta,
		Subject:     &Subject{Kind: "user", ID: user.ID.String()},
		Description: "Removeu utilizador: " + user.Name,
	})

	return s.users.Delete(ctx, id)
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.NotFound("user not found", err)
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *toUserResponse(&users[i]))
	}
	return res, total, nil
}

func (s *userService) signAccessToken(user *model.User) (string, error) {
	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": roleName,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(middleware.GetJWTSecret())
}

func newRefreshToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := s.signAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.users.SaveRefreshToken(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*TokenPair, *UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperror.Validation("invalid email or password")
	}
	if !user.IsActive {
		return nil, nil, apperror.Validation("account is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, apperror.Validation("invalid email or password")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	loginMeta := meta
	loginMeta.CauserID = &user.ID
	s.activity.Record(ctx, ActivityEntry{
		Category:    model.LogAuth,
		Meta:        loginMeta,
		Subject:     &Subject{Kind: "user", ID: user.ID.String()},
		Description: "Iniciou sessão",
	})

	return tokens, toUserResponse(user), nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.users.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, apperror.Validation("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.users.DeleteRefreshToken(ctx, refreshToken)
		return nil, apperror.Validation("refresh token expired")
	}

	user, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperror.Validation("invalid refresh token")
	}
	if !user.IsActive {
		return nil, apperror.Validation("account is disabled")
	}

	// Rotate: the old token is single use
	if err := s.users.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string, meta RequestMeta) error {
	if refreshToken != "" {
		_ = s.users.DeleteRefreshToken(ctx, refreshToken)
	}
	if meta.CauserID != nil {
		s.activity.Record(ctx, ActivityEntry{
			Category:    model.LogAuth,
			Meta:        meta,
			Subject:     &Subject{Kind: "user", ID: meta.CauserID.String()},
			Description: "Terminou sessão",
		})
	}
	return nil
}
