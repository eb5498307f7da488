package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/storage"
	"catalog-bootstrapper/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDocuments_EnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "specs").Return(true, nil)

		require.NoError(t, storage.NewDocuments(client, "specs").EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "specs").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "specs", mock.Anything).Return(nil)

		require.NoError(t, storage.NewDocuments(client, "specs").EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "specs").Return(false, errors.New("denied"))

		err := storage.NewDocuments(client, "specs").EnsureBucket(context.Background())
		assert.ErrorContains(t, err, "denied")
	})
}

func TestDocuments_ReadSpec(t *testing.T) {
	client := new(mocks.Client)
	body := io.NopCloser(bytes.NewBufferString(`
priceVariants:
  - identifier: eur
    name: Euro
    currency: EUR
`))
	client.On("GetObject", mock.Anything, "specs", "shops/demo.yaml", mock.Anything).Return(body, nil)

	s, err := storage.NewDocuments(client, "specs").ReadSpec(context.Background(), "shops/demo.yaml")
	require.NoError(t, err)
	require.NotNil(t, s.PriceVariants)
	assert.Equal(t, []spec.PriceVariant{{Identifier: "eur", Name: "Euro", Currency: "EUR"}}, *s.PriceVariants)
	assert.Nil(t, s.Items)
}

func TestDocuments_ReadSpecMissing(t *testing.T) {
	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "specs", "missing.json", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

	_, err := storage.NewDocuments(client, "specs").ReadSpec(context.Background(), "missing.json")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
}

func TestDocuments_WriteSpec(t *testing.T) {
	client := new(mocks.Client)
	var written []byte
	client.On("PutObject", mock.Anything, "specs", "export/shop.json", mock.Anything, mock.Anything, mock.MatchedBy(func(o minio.PutObjectOptions) bool {
		return o.ContentType == "application/json"
	})).Run(func(args mock.Arguments) {
		written, _ = io.ReadAll(args.Get(3).(io.Reader))
	}).Return(minio.UploadInfo{}, nil)

	langs := []spec.Language{{Code: "en", Name: "English", IsDefault: true}}
	err := storage.NewDocuments(client, "specs").WriteSpec(context.Background(), "export/shop.json", &spec.Spec{Languages: &langs})
	require.NoError(t, err)

	assert.Contains(t, string(written), `"languages"`)
	assert.Contains(t, string(written), `"isDefault": true`)
	assert.NotContains(t, string(written), `"items"`)
}

func TestDocuments_ListSpecs(t *testing.T) {
	client := new(mocks.Client)
	ch := make(chan minio.ObjectInfo, 3)
	ch <- minio.ObjectInfo{Key: "shops/a.json"}
	ch <- minio.ObjectInfo{Key: "shops/b.yml"}
	ch <- minio.ObjectInfo{Key: "shops/readme.txt"}
	close(ch)
	client.On("ListObjects", mock.Anything, "specs", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	keys, err := storage.NewDocuments(client, "specs").ListSpecs(context.Background(), "shops/")
	require.NoError(t, err)
	assert.Equal(t, []string{"shops/a.json", "shops/b.yml"}, keys)
}
