package service

import (
	"testing"
	"time"

	"userhub/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func restoreGlobals() {
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	timeNow = time.Now
	parseWithClaims = jwt.ParseWithClaims
	hashPassword = HashPassword
}

func TestIssueAccessToken(t *testing.T) {
	t.Cleanup(restoreGlobals)
	_, err := IssueAccessToken("", model.User{}, time.Minute)
	require.Error(t, err)

	tok, err := IssueAccessToken("s", model.User{ID: 5, IsAdmin: true}, time.Minute)
	require.NoError(t, err)
	claims := &CustomClaims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return []byte("s"), nil })
	require.NoError(t, err)
	require.Equal(t, 5, claims.UserID)
	require.Equal(t, "5", claims.Subject)
	require.True(t, claims.IsAdmin)
}

func TestVerifyAccessToken(t *testing.T) {
	t.Cleanup(restoreGlobals)
	_, err := VerifyAccessToken("", "abc")
	require.Error(t, err)

	_, err = VerifyAccessToken("s", "invalid")
	require.Error(t, err)

	tokNone, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	_, err = VerifyAccessToken("s", tokNone)
	require.Error(t, err)

	other, _ := IssueAccessToken("other", model.User{ID: 3}, time.Minute)
	_, err = VerifyAccessToken("s", other)
	require.Error(t, err)

	timeNow = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := IssueAccessToken("s", model.User{ID: 3}, time.Minute)
	_, err = VerifyAccessToken("s", expired)
	require.Error(t, err)
	timeNow = time.Now

	anon, _ := IssueAccessToken("s", model.User{}, time.Minute)
	_, err = VerifyAccessToken("s", anon)
	require.Error(t, err)

	parseWithClaims = func(s string, c jwt.Claims, k jwt.Keyfunc, opts ...jwt.ParserOption) (*jwt.Token, error) {
		return &jwt.Token{Claims: jwt.MapClaims{}, Valid: false}, nil
	}
	_, err = VerifyAccessToken("s", "whatever")
	require.Error(t, err)

	parseWithClaims = jwt.ParseWithClaims
	tok, _ := IssueAccessToken("s", model.User{ID: 3}, time.Minute)
	claims, err := VerifyAccessToken("s", tok)
	require.NoError(t, err)
	require.Equal(t, 3, claims.UserID)
}
