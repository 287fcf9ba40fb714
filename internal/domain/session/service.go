// internal/domain/session/service.go
package session

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"github.com/threadline/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles account and session business logic
type Service struct {
	db         *gorm.DB
	redis      *redis.Client
	config     *config.Config
	jwtManager *auth.JWTManager
	pwManager  *auth.PasswordManager
	tracker    *StateTracker
	localSeq   atomic.Uint64
}

// NewService creates a new session service. The redis client may be nil, in
// which case the session registry and event sequencing fall back to local
// process state.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:         db,
		redis:      redisClient,
		config:     cfg,
		jwtManager: auth.NewJWTManager(cfg),
		pwManager:  auth.NewPasswordManager(cfg),
		tracker:    NewStateTracker(),
	}
}

// SignUpRequest represents account registration data
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// SignInRequest represents login credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a partial profile update; nil fields are
// left untouched
type UpdateProfileRequest struct {
	FullName    *string      `json:"full_name"`
	Phone       *string      `json:"phone"`
	Address     *string      `json:"address"`
	City        *string      `json:"city"`
	State       *string      `json:"state"`
	Zip         *string      `json:"zip"`
	Preferences *Preferences `json:"preferences"`
}

// AuthResponse is returned after sign-up, sign-in, and session restore
type AuthResponse struct {
	User         *Profile       `json:"user"`
	AccessToken  string         `json:"access_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	ExpiresIn    int64          `json:"expires_in,omitempty"`
	Redirect     RedirectIntent `json:"redirect"`
}

// Tracker exposes the merged session state for subscribers
func (s *Service) Tracker() *StateTracker {
	return s.tracker
}

// Subscribe registers a listener for auth state changes. The returned
// function cancels the subscription.
func (s *Service) Subscribe() (<-chan SessionState, func()) {
	return s.tracker.Subscribe()
}

// SignUp registers a new account. The identity row and the profile row are
// two separate writes with no surrounding transaction; when the profile write
// fails the identity stays behind and the caller gets a partial-write error
// naming the completed step.
func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing Identity
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperrors.ValidationFailed("an account with this email already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperrors.RemoteRejected("failed to check existing account", err)
	}

	hash, err := s.pwManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.ValidationFailed(err.Error())
	}

	identity := Identity{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.Create(&identity).Error; err != nil {
		return nil, apperrors.RemoteRejected("failed to create account", err)
	}

	profile := Profile{
		UserID:      identity.ID,
		FullName:    req.FullName,
		Email:       email,
		Phone:       req.Phone,
		Role:        RoleCustomer,
		Preferences: DefaultPreferences(),
	}
	if err := s.db.Create(&profile).Error; err != nil {
		// The identity write already landed; it is not rolled back here
		return nil, apperrors.PartialWriteWindow("account created but profile write failed", err)
	}

	return s.openSession(ctx, &identity, &profile)
}

// SignIn authenticates an account and opens a session
func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var identity Identity
	if err := s.db.Where("email = ?", email).First(&identity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotAuthenticated("invalid email or password")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve account", err)
	}

	if err := s.pwManager.VerifyPassword(req.Password, identity.PasswordHash); err != nil {
		return nil, apperrors.NotAuthenticated("invalid email or password")
	}

	profile, err := s.loadProfileIfPresent(identity.ID)
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, &identity, profile)
}

// SignOut closes the user's session and publishes the state change
func (s *Service) SignOut(ctx context.Context, userID uint) error {
	if s.redis != nil {
		if err := s.redis.Del(ctx, s.sessionKey(userID)).Err(); err != nil {
			return apperrors.RemoteRejected("failed to invalidate session", err)
		}
	}

	s.tracker.Apply(AuthEvent{
		Seq:    s.nextSeq(ctx, userID),
		Type:   EventSignedOut,
		UserID: userID,
	})
	return nil
}

// RestoreSession validates an access token from a previous visit and returns
// the signed-in view of the account. An invalid, expired, or revoked token
// yields a not-authenticated error, never a crash.
func (s *Service) RestoreSession(ctx context.Context, accessToken string) (*AuthResponse, error) {
	if accessToken == "" {
		return nil, apperrors.NotAuthenticated("no session token")
	}

	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.NotAuthenticated("session token is invalid or expired")
	}

	if s.redis != nil {
		exists, err := s.redis.Exists(ctx, s.sessionKey(claims.UserID)).Result()
		if err != nil {
			return nil, apperrors.RemoteRejected("failed to check session registry", err)
		}
		if exists == 0 {
			return nil, apperrors.NotAuthenticated("session has been signed out")
		}
	}

	profile, err := s.loadProfileIfPresent(claims.UserID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:     profile,
		Redirect: RedirectFor(profileRole(profile)),
	}, nil
}

// RefreshToken exchanges a refresh token for a fresh access token. The role
// embedded in the new token is re-read from the profile, not carried over.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NotAuthenticated("refresh token is invalid or expired")
	}

	profile, err := s.loadProfileIfPresent(claims.UserID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(claims.UserID, claims.Email, profileRole(profile))
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to generate access token", err)
	}

	s.touchSession(ctx, claims.UserID)
	s.tracker.Apply(AuthEvent{
		Seq:    s.nextSeq(ctx, claims.UserID),
		Type:   EventTokenRefresh,
		UserID: claims.UserID,
		Email:  claims.Email,
	})

	return &AuthResponse{
		User:        profile,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.JWT.AccessTokenExpiry.Seconds()),
		Redirect:    RedirectFor(profileRole(profile)),
	}, nil
}

// LoadProfile returns the profile together with the landing destination for
// its role. Admin accounts land on the admin dashboard, everyone else on the
// storefront root. An account whose profile row never landed gets a nil
// profile and the storefront destination, not an error.
func (s *Service) LoadProfile(userID uint) (*Profile, RedirectIntent, error) {
	profile, err := s.loadProfileIfPresent(userID)
	if err != nil {
		return nil, RedirectStorefrontHome, err
	}
	return profile, RedirectFor(profileRole(profile)), nil
}

// UpdateProfile applies a partial update and returns the row as persisted.
// The returned profile is always re-read from the store, never assembled from
// the request.
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*Profile, error) {
	profile, err := s.loadProfileByUserID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.Zip != nil {
		updates["zip"] = *req.Zip
	}
	if req.Preferences != nil {
		updates["preferences"] = *req.Preferences
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, apperrors.RemoteRejected("failed to update profile", err)
		}
	}

	return s.loadProfileByUserID(userID)
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword verifies the current password and replaces the hash
func (s *Service) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var identity Identity
	if err := s.db.First(&identity, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("account not found")
		}
		return apperrors.RemoteRejected("failed to retrieve account", err)
	}

	if err := s.pwManager.VerifyPassword(req.CurrentPassword, identity.PasswordHash); err != nil {
		return apperrors.NotAuthenticated("current password is incorrect")
	}

	hash, err := s.pwManager.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.ValidationFailed(err.Error())
	}

	if err := s.db.Model(&identity).Update("password_hash", hash).Error; err != nil {
		return apperrors.RemoteRejected("failed to update password", err)
	}
	return nil
}

func (s *Service) openSession(ctx context.Context, identity *Identity, profile *Profile) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(identity.ID, identity.Email, profileRole(profile))
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to generate access token", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(identity.ID, identity.Email)
	if err != nil {
		return nil, apperrors.RemoteRejected("failed to generate refresh token", err)
	}

	s.touchSession(ctx, identity.ID)
	s.tracker.Apply(AuthEvent{
		Seq:    s.nextSeq(ctx, identity.ID),
		Type:   EventSignedIn,
		UserID: identity.ID,
		Email:  identity.Email,
	})

	return &AuthResponse{
		User:         profile,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
		Redirect:     RedirectFor(profileRole(profile)),
	}, nil
}

func (s *Service) loadProfileByUserID(userID uint) (*Profile, error) {
	var profile Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("profile not found")
		}
		return nil, apperrors.RemoteRejected("failed to retrieve profile", err)
	}
	return &profile, nil
}

// loadProfileIfPresent treats a missing profile row as an open state, not an
// error. Sign-up writes the identity before the profile; an account caught in
// that window can still sign in and restore sessions.
func (s *Service) loadProfileIfPresent(userID uint) (*Profile, error) {
	profile, err := s.loadProfileByUserID(userID)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// profileRole reports the effective role, defaulting to customer while the
// profile row is absent
func profileRole(p *Profile) string {
	if p == nil {
		return RoleCustomer
	}
	return p.Role
}

// touchSession marks the session active in the registry with a sliding TTL
func (s *Service) touchSession(ctx context.Context, userID uint) {
	if s.redis == nil {
		return
	}
	s.redis.Set(ctx, s.sessionKey(userID), time.Now().UTC().Unix(), s.config.JWT.SessionTTL)
}

// nextSeq issues the next event sequence number. Redis INCR keeps the counter
// monotonic across instances; without redis a process-local counter is used.
func (s *Service) nextSeq(ctx context.Context, userID uint) uint64 {
	if s.redis != nil {
		if seq, err := s.redis.Incr(ctx, fmt.Sprintf("session:seq:%d", userID)).Result(); err == nil {
			return uint64(seq)
		}
	}
	return s.localSeq.Add(1)
}

func (s *Service) sessionKey(userID uint) string {
	return fmt.Sprintf("session:user:%d", userID)
}
