//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"ticketgate/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// MintToken signs a short-lived access token the way the identity provider
// would. Tokens are minted externally in production; tests mint their own.
func MintToken(t *testing.T, secret string, subjectID uuid.UUID, role string) string {
	t.Helper()

	token, err := jwt.SignToken(secret, subjectID, role, time.Hour)
	require.NoError(t, err, "failed to sign test token")
	return token
}
