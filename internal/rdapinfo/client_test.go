package rdapinfo

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		client := NewClient()

		require.NotNil(t, client)
		assert.Equal(t, defaultTimeout, client.timeout)
	})

	t.Run("options", func(t *testing.T) {
		httpClient := &http.Client{Timeout: 3 * time.Second}
		client := NewClient(
			WithHTTPClient(httpClient),
			WithTimeout(5*time.Second),
		)

		assert.Same(t, httpClient, client.rdapClient.HTTP)
		assert.Equal(t, 5*time.Second, client.timeout)
	})

	t.Run("zero timeout ignored", func(t *testing.T) {
		client := NewClient(WithTimeout(0))

		assert.Equal(t, defaultTimeout, client.timeout)
	})
}

func TestRegistered(t *testing.T) {
	t.Run("empty domain", func(t *testing.T) {
		client := NewClient()

		_, err := client.Registered(context.Background(), "   ")
		require.ErrorIs(t, err, ErrEmptyDomain)
	})

	t.Run("transport failure is inconclusive", func(t *testing.T) {
		// no registry serves the reserved .invalid TLD, so the query
		// fails at bootstrap rather than with object-does-not-exist
		client := NewClient(
			WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}),
			WithTimeout(100*time.Millisecond),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		registered, err := client.Registered(ctx, "definitely-not-registered-example.invalid")
		require.Error(t, err)
		assert.False(t, registered)
	})
}
