package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/repository/sqlite"
)

const testSecret = "test-secret-0123456789"

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "auth.db"), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewService(sqlite.NewUserRepository(db), NewTokenIssuer(testSecret, 24*time.Hour, nil), nil)
	svc.cost = bcrypt.MinCost
	return svc
}

func registerInput(email string) RegisterInput {
	return RegisterInput{Email: email, Password: "s3cret!", Name: "Awa", FarmName: "Sunrise Farm"}
}

func TestRegister_IssuesTokenAndHashesPassword(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Register(context.Background(), registerInput("awa@farm.test"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.SubscriptionFree, res.User.Subscription)
	assert.NotEqual(t, "s3cret!", res.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("s3cret!")))

	id, err := svc.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.Equal(t, "awa@farm.test", id.Email)
	assert.Equal(t, "Awa", id.Name)
}

func TestRegister_DuplicateEmailLeavesOriginal(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, registerInput("dup@farm.test"))
	require.NoError(t, err)

	again := registerInput("dup@farm.test")
	again.Password = "different"
	again.Name = "Impostor"
	_, err = svc.Register(ctx, again)
	assert.ErrorIs(t, err, models.ErrDuplicateIdentity)

	login, err := svc.Authenticate(ctx, LoginInput{Email: "dup@farm.test", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, login.User.ID)
	assert.Equal(t, "Awa", login.User.Name)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "s3cret!", Name: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "a@b.co", Password: "123", Name: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerInput("login@farm.test"))
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, LoginInput{Email: "login@farm.test", Password: "wrong"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, LoginInput{Email: "nobody@farm.test", Password: "s3cret!"})
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	res, err := svc.Register(ctx, registerInput("profile@farm.test"))
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, res.User.ID, ProfileInput{
		Name:         "Awa Diallo",
		Location:     "Kindia",
		Phone:        "224600000000",
		Subscription: models.SubscriptionPro,
	})
	require.NoError(t, err)
	assert.Equal(t, "Awa Diallo", updated.Name)

	stored, err := svc.Profile(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kindia", stored.Location)
	assert.Equal(t, models.SubscriptionPro, stored.Subscription)
	assert.Equal(t, "profile@farm.test", stored.Email)

	_, err = svc.Profile(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFoundOrForbidden)
}

func TestTokenIssuer_ExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	clock := issuedAt
	issuer := NewTokenIssuer(testSecret, 24*time.Hour, func() time.Time { return clock })

	token, expiresAt, err := issuer.Issue(&models.User{ID: "u1", Email: "e@x.co", Name: "E"})
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(24*time.Hour), expiresAt)

	clock = issuedAt.Add(23*time.Hour + 59*time.Minute)
	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)

	clock = issuedAt.Add(24*time.Hour + time.Minute)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredToken)
}

func TestTokenIssuer_ClaimNames(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour, nil)
	token, _, err := issuer.Issue(&models.User{ID: "u1", Email: "e@x.co", Name: "E"})
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "e@x.co", claims["email"])
	assert.NotContains(t, claims, "id")
	assert.Contains(t, claims, "iat")
	assert.Contains(t, claims, "exp")
}

func TestTokenIssuer_RejectsForeignSignatures(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour, nil)
	other := NewTokenIssuer("another-secret-9876543210", time.Hour, nil)

	token, _, err := other.Issue(&models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredToken)

	_, err = issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(raw)
	assert.ErrorIs(t, err, models.ErrInvalidOrExpiredToken)
}
