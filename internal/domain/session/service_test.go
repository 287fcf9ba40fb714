// internal/domain/session/service_test.go
package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront-backend/internal/config"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "threadline-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	cfg.JWT.SessionTTL = 24 * time.Hour
	cfg.Security.BcryptCost = 4
	return cfg
}

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Identity{}, &Profile{}))

	return NewService(db, nil, testConfig()), db
}

func signUpRequest() *SignUpRequest {
	return &SignUpRequest{
		Email:    "ana@example.com",
		Password: "sunny-day-42",
		FullName: "Ana Souza",
		Phone:    "+55 11 91234-5678",
	}
}

func TestSignUpCreatesIdentityAndProfile(t *testing.T) {
	svc, db := setupTestService(t)

	resp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Ana Souza", resp.User.FullName)
	assert.Equal(t, RoleCustomer, resp.User.Role)
	assert.Equal(t, RedirectStorefrontHome, resp.Redirect)

	var identity Identity
	require.NoError(t, db.Where("email = ?", "ana@example.com").First(&identity).Error)
	assert.NotEqual(t, "sunny-day-42", identity.PasswordHash)

	var profile Profile
	require.NoError(t, db.Where("user_id = ?", identity.ID).First(&profile).Error)
	assert.True(t, profile.Preferences.Notifications)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), signUpRequest())
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

func TestSignUpWeakPassword(t *testing.T) {
	svc, _ := setupTestService(t)

	req := signUpRequest()
	req.Password = "short"

	_, err := svc.SignUp(context.Background(), req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
}

func TestSignUpPartialWriteLeavesIdentity(t *testing.T) {
	svc, db := setupTestService(t)

	// Force the profile write to fail after the identity lands
	require.NoError(t, db.Migrator().DropTable(&Profile{}))

	_, err := svc.SignUp(context.Background(), signUpRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPartialWriteWindow))

	var identities int64
	require.NoError(t, db.Model(&Identity{}).Count(&identities).Error)
	assert.Equal(t, int64(1), identities)
}

func TestSignInSuccess(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	resp, err := svc.SignIn(context.Background(), &SignInRequest{
		Email:    "ana@example.com",
		Password: "sunny-day-42",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Ana Souza", resp.User.FullName)
}

func TestSignInWrongPassword(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), &SignInRequest{
		Email:    "ana@example.com",
		Password: "wrong-password-1",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestSignInUnknownEmail(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.SignIn(context.Background(), &SignInRequest{
		Email:    "nobody@example.com",
		Password: "whatever-123",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestRedirectFollowsRole(t *testing.T) {
	svc, db := setupTestService(t)

	resp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)
	assert.Equal(t, RedirectStorefrontHome, resp.Redirect)

	// Promote to admin and the landing destination changes
	require.NoError(t, db.Model(&Profile{}).
		Where("user_id = ?", resp.User.UserID).
		Update("role", RoleAdmin).Error)

	_, redirect, err := svc.LoadProfile(resp.User.UserID)
	require.NoError(t, err)
	assert.Equal(t, RedirectAdminHome, redirect)
}

func TestSignInWithoutProfile(t *testing.T) {
	svc, db := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	// An identity can exist without its profile row ever landing
	require.NoError(t, db.Where("user_id = ?", signedUp.User.UserID).Delete(&Profile{}).Error)

	resp, err := svc.SignIn(context.Background(), &SignInRequest{
		Email:    "ana@example.com",
		Password: "sunny-day-42",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.User)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, RedirectStorefrontHome, resp.Redirect)

	restored, err := svc.RestoreSession(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, restored.User)
	assert.Equal(t, RedirectStorefrontHome, restored.Redirect)

	profile, redirect, err := svc.LoadProfile(signedUp.User.UserID)
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Equal(t, RedirectStorefrontHome, redirect)
}

func TestRestoreSessionRoundTrip(t *testing.T) {
	svc, _ := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	restored, err := svc.RestoreSession(context.Background(), signedUp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.UserID, restored.User.UserID)
	assert.Equal(t, RedirectStorefrontHome, restored.Redirect)
}

func TestRestoreSessionInvalidToken(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.RestoreSession(context.Background(), "not-a-token")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))

	_, err = svc.RestoreSession(context.Background(), "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestRestoreSessionRejectsRefreshToken(t *testing.T) {
	svc, _ := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	_, err = svc.RestoreSession(context.Background(), signedUp.RefreshToken)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
}

func TestRefreshTokenReReadsRole(t *testing.T) {
	svc, db := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	require.NoError(t, db.Model(&Profile{}).
		Where("user_id = ?", signedUp.User.UserID).
		Update("role", RoleAdmin).Error)

	refreshed, err := svc.RefreshToken(context.Background(), signedUp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, RoleAdmin, refreshed.User.Role)
	assert.Equal(t, RedirectAdminHome, refreshed.Redirect)
}

func TestUpdateProfileReturnsPersistedState(t *testing.T) {
	svc, _ := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	newName := "Ana Lima"
	prefs := Preferences{Notifications: false, Newsletter: true, Theme: "dark"}
	updated, err := svc.UpdateProfile(signedUp.User.UserID, &UpdateProfileRequest{
		FullName:    &newName,
		Preferences: &prefs,
	})
	require.NoError(t, err)

	// The response is re-read from the store, not echoed from the request
	assert.Equal(t, "Ana Lima", updated.FullName)
	assert.Equal(t, "dark", updated.Preferences.Theme)
	assert.True(t, updated.Preferences.Newsletter)
	assert.Equal(t, "+55 11 91234-5678", updated.Phone)
}

func TestUpdateProfilePatchesAddress(t *testing.T) {
	svc, _ := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	address := "Rua das Flores, 120"
	city := "São Paulo"
	state := "SP"
	zip := "01001-000"
	updated, err := svc.UpdateProfile(signedUp.User.UserID, &UpdateProfileRequest{
		Address: &address,
		City:    &city,
		State:   &state,
		Zip:     &zip,
	})
	require.NoError(t, err)

	assert.Equal(t, "Rua das Flores, 120", updated.Address)
	assert.Equal(t, "São Paulo", updated.City)
	assert.Equal(t, "SP", updated.State)
	assert.Equal(t, "01001-000", updated.Zip)

	// Untouched fields survive the patch
	assert.Equal(t, "Ana Souza", updated.FullName)
	assert.Equal(t, "+55 11 91234-5678", updated.Phone)
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	err = svc.ChangePassword(signedUp.User.UserID, &ChangePasswordRequest{
		CurrentPassword: "wrong-password-1",
		NewPassword:     "new-password-99",
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))

	err = svc.ChangePassword(signedUp.User.UserID, &ChangePasswordRequest{
		CurrentPassword: "sunny-day-42",
		NewPassword:     "new-password-99",
	})
	require.NoError(t, err)

	_, err = svc.SignIn(context.Background(), &SignInRequest{
		Email:    "ana@example.com",
		Password: "new-password-99",
	})
	require.NoError(t, err)
}

func TestListCustomers(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	other := signUpRequest()
	other.Email = "bruno@example.com"
	other.FullName = "Bruno Costa"
	_, err = svc.SignUp(context.Background(), other)
	require.NoError(t, err)

	resp, err := svc.ListCustomers(&CustomerListRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = svc.ListCustomers(&CustomerListRequest{Page: 1, Limit: 10, Search: "bruno"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Bruno Costa", resp.Customers[0].FullName)
}

func TestUpdateCustomerRole(t *testing.T) {
	svc, _ := setupTestService(t)

	signedUp, err := svc.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	_, err = svc.UpdateCustomerRole(signedUp.User.UserID, "superuser")
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidationFailed))

	profile, err := svc.UpdateCustomerRole(signedUp.User.UserID, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, profile.Role)
}
