package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&APIToken{}))
	return db
}

func TestService_IssueAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testDB(t))

	token, err := svc.Issue(ctx, "ci")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "pk_"))

	assert.NoError(t, svc.Verify(ctx, token))
	assert.ErrorIs(t, svc.Verify(ctx, "pk_wrong"), ErrInvalidToken)
	assert.ErrorIs(t, svc.Verify(ctx, ""), ErrInvalidToken)
}

func TestService_PlaintextNeverStored(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	svc := NewService(db)

	token, err := svc.Issue(ctx, "ci")
	require.NoError(t, err)

	var stored APIToken
	require.NoError(t, db.First(&stored).Error)
	assert.NotEqual(t, token, stored.TokenHash)
	assert.True(t, strings.HasPrefix(stored.TokenHash, "$2"), "bcrypt hash")
	assert.NotContains(t, token, stored.LookupKey, "lookup key reveals nothing of the token")
	assert.Len(t, stored.LookupKey, 16)
	assert.Equal(t, lookupKey(token), stored.LookupKey, "key is deterministic")
}

func TestService_VerifyWithManyTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testDB(t))

	issued := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		tok, err := svc.Issue(ctx, "ci")
		require.NoError(t, err)
		issued = append(issued, tok)
	}

	for _, tok := range issued {
		assert.NoError(t, svc.Verify(ctx, tok))
	}
	assert.ErrorIs(t, svc.Verify(ctx, "pk_never_issued"), ErrInvalidToken)
}
