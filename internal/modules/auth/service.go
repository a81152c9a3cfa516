package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidToken = errors.New("invalid api token")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Issue creates a new opaque API token. Only the bcrypt hash is
// stored; the plaintext is returned once and never again. A short
// deterministic lookup key is stored alongside so verification is one
// indexed fetch instead of a bcrypt compare per row.
func (s *Service) Issue(ctx context.Context, label string) (string, error) {
	plain := "pk_" + uuid.NewString()

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	t := APIToken{
		ID:        uuid.NewString(),
		LookupKey: lookupKey(plain),
		TokenHash: string(hash),
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return "", err
	}
	return plain, nil
}

// Verify checks a presented token against the stored hash found via
// its lookup key.
func (s *Service) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	var tokens []APIToken
	err := s.db.WithContext(ctx).
		Find(&tokens, "lookup_key = ?", lookupKey(token)).Error
	if err != nil {
		return err
	}
	for _, t := range tokens {
		if bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(token)) == nil {
			return nil
		}
	}
	return ErrInvalidToken
}

// lookupKey derives a non-reversible 16-hex-char index key from the
// plaintext. The bcrypt hash stays the authority; the key only
// narrows the candidate set.
func lookupKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
