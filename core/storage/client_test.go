package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointHost(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{endpoint: "localhost:9000", want: "localhost:9000"},
		{endpoint: "http://minio:9000/", want: "minio:9000"},
		{endpoint: "https://s3.amazonaws.com", want: "s3.amazonaws.com"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			assert.Equal(t, tt.want, endpointHost(tt.endpoint))
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("BindsBucket", func(t *testing.T) {
		docs, err := Open(Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "key",
			SecretKey: "secret",
			Bucket:    "catalog-specs",
		})
		require.NoError(t, err)
		assert.Equal(t, "catalog-specs", docs.Bucket())
	})

	t.Run("NoBucket", func(t *testing.T) {
		_, err := Open(Config{Endpoint: "localhost:9000"})
		assert.ErrorIs(t, err, ErrNoBucket)
	})

	t.Run("InvalidEndpoint", func(t *testing.T) {
		_, err := Open(Config{Endpoint: "local host:9000", Bucket: "catalog-specs"})
		assert.ErrorContains(t, err, "failed to create minio client")
	})
}
