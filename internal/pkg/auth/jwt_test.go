package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendly/attendly/internal/app/models"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "attendly-test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()
	dept := int64(4)
	user := &models.User{ID: 9, Email: "hod@college.edu", RoleType: models.RoleHOD, DepartmentID: &dept}

	token, expiresIn, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.Equal(t, 3600, expiresIn)

	claims, err := svc.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, models.RoleHOD, claims.Role())
	require.NotNil(t, claims.DepartmentID)
	assert.Equal(t, dept, *claims.DepartmentID)
	assert.Equal(t, "9", claims.Subject)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateAccessToken(&models.User{ID: 1, Email: "a@b.c", RoleType: models.RoleFaculty})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "attendly-test"})
	token, _, err := other.GenerateAccessToken(&models.User{ID: 1, Email: "a@b.c", RoleType: models.RoleFaculty})
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = ExtractBearerToken("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractBearerToken("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractBearerToken("  Bearer")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	token, err = ExtractBearerToken("bearer  abc.def ")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)
}

func TestPasswordHashing(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	defer func() { BcryptCost = 12 }()

	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
