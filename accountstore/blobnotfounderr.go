package accountstore

import (
	"errors"
	"fmt"

	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const (
	azblobBlobNotFound    = "BlobNotFound"
	azblobConditionNotMet = "ConditionNotMet"
	azblobBlobExists      = "BlobAlreadyExists"
)

var (
	ErrAccountNotFound = errors.New("accountstore: account not found")
	// ErrStale is returned when the stored account changed since it was
	// loaded, or was created by someone else.
	ErrStale = errors.New("accountstore: account changed since it was loaded")
)

func asStorageError(err error) (azStorageBlob.StorageError, bool) {
	serr := &azStorageBlob.StorageError{}
	//nolint
	ierr, ok := err.(*azStorageBlob.InternalError)
	if ierr == nil || !ok {
		return azStorageBlob.StorageError{}, false
	}
	if !ierr.As(&serr) {
		return azStorageBlob.StorageError{}, false
	}
	return *serr, true
}

// wrapStorageError maps the azure blob not found and precondition failures to
// ErrAccountNotFound and ErrStale. Any other err is returned as is.
func wrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	serr, ok := asStorageError(err)
	if !ok {
		return err
	}
	switch string(serr.ErrorCode) {
	case azblobBlobNotFound:
		return fmt.Errorf("%s: %w", err.Error(), ErrAccountNotFound)
	case azblobConditionNotMet, azblobBlobExists:
		return fmt.Errorf("%s: %w", err.Error(), ErrStale)
	}
	return err
}
