package proofstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Remove(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "proof-1.jpg")
	require.NoError(t, os.WriteFile(file, []byte("jpeg"), 0o600))

	store := NewLocalStore(dir)

	require.NoError(t, store.Remove(context.Background(), "uploads/payment-proofs/proof-1.jpg"))
	_, err := os.Stat(file)
	assert.True(t, os.IsNotExist(err))

	// повторное удаление
	assert.NoError(t, store.Remove(context.Background(), "proof-1.jpg"))
}

func TestLocalStore_StaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "proofs")
	require.NoError(t, os.Mkdir(dir, 0o700))
	outside := filepath.Join(root, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	store := NewLocalStore(dir)

	require.NoError(t, store.Remove(context.Background(), "../secret.txt"))
	_, err := os.Stat(outside)
	assert.NoError(t, err)

	assert.ErrorIs(t, store.Remove(context.Background(), "  "), ErrInvalidRef)
}

func TestPublicID(t *testing.T) {
	tests := []struct {
		ref    string
		folder string
		want   string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345/proofs/abc.jpg", "", "proofs/abc"},
		{"https://res.cloudinary.com/demo/image/upload/proofs/abc.png", "other", "proofs/abc"},
		{"abc.jpg", "proofs", "proofs/abc"},
		{"proofs/abc", "ignored", "proofs/abc"},
		{"https://example.com/files/abc.jpg", "", ""},
		{"", "proofs", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicID(tt.ref, tt.folder))
		})
	}
}
