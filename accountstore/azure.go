package accountstore

import (
	"context"
	"io"

	"github.com/datatrails/go-datatrails-common/azblob"
)

type blobReaderPutter interface {
	Reader(
		ctx context.Context,
		identity string,
		opts ...azblob.Option,
	) (*azblob.ReaderResponse, error)

	Put(
		ctx context.Context,
		identity string,
		source io.ReadSeekCloser,
		opts ...azblob.Option,
	) (*azblob.WriteResponse, error)
}

// AzureObjects is the ObjectStore over an azure blob container, typically an
// *azblob.Storer.
type AzureObjects struct {
	store blobReaderPutter
}

func NewAzureObjects(store blobReaderPutter) *AzureObjects {
	return &AzureObjects{store: store}
}

func (a *AzureObjects) Get(ctx context.Context, blobPath string) ([]byte, string, error) {
	rr, err := a.store.Reader(ctx, blobPath)
	if err != nil {
		return nil, "", wrapStorageError(err)
	}
	defer rr.Reader.Close()
	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return nil, "", err
	}
	var etag string
	if rr.ETag != nil {
		etag = *rr.ETag
	}
	return data, etag, nil
}

// Put writes data guarded by etag and failIfExists. The new etag is not
// reported, callers read it back with Get.
func (a *AzureObjects) Put(ctx context.Context, blobPath string, data []byte, etag string, failIfExists bool) (string, error) {
	var opts []azblob.Option
	// CRITICAL: the etag guards against racy updates. It is absent only when
	// creating the blob.
	if etag != "" {
		opts = append(opts, azblob.WithEtagMatch(etag))
	}
	// The way to spell 'fail without modifying if the blob exists' is to
	// require that no blob matches *any* etag.
	if failIfExists {
		opts = append(opts, azblob.WithEtagNoneMatch("*"))
	}
	_, err := a.store.Put(ctx, blobPath, azblob.NewBytesReaderCloser(data), opts...)
	if err != nil {
		return "", wrapStorageError(err)
	}
	return "", nil
}
