package tests

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"
	"github.com/umbracle/ethgo/wallet"
)

// GenerateKeyAndAddr generates a fresh signing key
func GenerateKeyAndAddr(t *testing.T) (*wallet.Key, ethgo.Address) {
	t.Helper()

	key, err := wallet.GenerateKey()
	require.NoError(t, err)

	return key, key.Address()
}
