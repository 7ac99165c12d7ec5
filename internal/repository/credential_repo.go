package repository

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeyAPI is the credential name used for the completion API key.
const KeyAPI = "apiKey"

var ErrCredentialNotFound = errors.New("credential not found")

// CredentialRepo stores named string secrets encrypted at rest with
// ChaCha20-Poly1305. The nonce is prepended to the ciphertext.
type CredentialRepo struct {
	pool *pgxpool.Pool
	aead cipher.AEAD
}

// NewCredentialRepo expects keyHex to decode to a 32-byte key.
func NewCredentialRepo(pool *pgxpool.Pool, keyHex string) (*CredentialRepo, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid credential key: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential cipher: %w", err)
	}
	return &CredentialRepo{pool: pool, aead: aead}, nil
}

func (r *CredentialRepo) Set(ctx context.Context, name, secret string) error {
	sealed, err := seal(r.aead, []byte(secret))
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO credentials (name, secret_enc, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET secret_enc = EXCLUDED.secret_enc, updated_at = NOW()
	`, name, sealed)
	return err
}

func (r *CredentialRepo) Get(ctx context.Context, name string) (string, error) {
	var sealed []byte
	err := r.pool.QueryRow(ctx, `SELECT secret_enc FROM credentials WHERE name = $1`, name).Scan(&sealed)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrCredentialNotFound
	}
	if err != nil {
		return "", err
	}

	plain, err := open(r.aead, sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential %s: %w", name, err)
	}
	return string(plain), nil
}

// APIKey returns the stored completion API key.
func (r *CredentialRepo) APIKey(ctx context.Context) (string, error) {
	return r.Get(ctx, KeyAPI)
}

func (r *CredentialRepo) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM credentials WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func open(aead cipher.AEAD, sealed []byte) ([]byte, error) {
	if len(sealed) < aead.NonceSize() {
		return nil, errors.New("ciphertext shorter than nonce")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
