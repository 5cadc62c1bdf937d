// Package accountstore persists accounts as blobs.
//
// Each account is one blob holding a fixed prologue followed by the account
// data buffer:
//
//	| owner | balance   | data ...
//	| 0  31 | 32     39 | 40 ...
//
// Writes are guarded by the etag of the last read, so two hosts racing to
// commit the same account can not both succeed.
package accountstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"

	"github.com/forestrie/go-nftstaking/account"
	"github.com/forestrie/go-nftstaking/identity"
)

const (
	V1AccountPrefix = "v1/accounts"
	blobExt         = ".acct"

	ownerOff     = 0
	balanceOff   = ownerOff + identity.Bytes
	PrologueSize = balanceOff + 8
)

var (
	ErrShortBlob = errors.New("accountstore: blob shorter than the account prologue")
)

// ObjectStore is the conditional object storage accounts are kept in.
type ObjectStore interface {
	// Get returns the object content and its current etag.
	Get(ctx context.Context, path string) ([]byte, string, error)
	// Put writes data if the object's etag matches etag (when not empty) and,
	// if failIfExists, only when no object exists. It returns the new etag
	// when the implementation knows it.
	Put(ctx context.Context, path string, data []byte, etag string, failIfExists bool) (string, error)
}

type Options struct {
	Prefix string
}

// Option is a generic option type. Implementations type assert to their
// options target and ignore options that do not apply.
type Option func(any)

// WithPrefix roots all account blobs under prefix instead of V1AccountPrefix.
func WithPrefix(prefix string) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Prefix = strings.TrimSuffix(prefix, "/")
		}
	}
}

type Store struct {
	Log     logger.Logger
	objects ObjectStore
	opts    Options

	mu    sync.Mutex
	etags map[identity.ID]string
}

func New(log logger.Logger, objects ObjectStore, opts ...Option) *Store {
	s := &Store{
		Log:     log,
		objects: objects,
		opts:    Options{Prefix: V1AccountPrefix},
		etags:   map[identity.ID]string{},
	}
	for _, o := range opts {
		o(&s.opts)
	}
	return s
}

// BlobPath returns the path of the blob for key.
func (s *Store) BlobPath(key identity.ID) string {
	return fmt.Sprintf("%s/%s%s", s.opts.Prefix, key, blobExt)
}

// Encode returns the blob content for acct.
func Encode(acct *account.Info) []byte {
	b := make([]byte, PrologueSize+len(acct.Data))
	copy(b[ownerOff:ownerOff+identity.Bytes], acct.Owner[:])
	binary.LittleEndian.PutUint64(b[balanceOff:balanceOff+8], acct.Balance)
	copy(b[PrologueSize:], acct.Data)
	return b
}

// Decode returns the account stored under key in blob b.
func Decode(key identity.ID, b []byte) (*account.Info, error) {
	if len(b) < PrologueSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortBlob, len(b))
	}
	a := &account.Info{Key: key}
	copy(a.Owner[:], b[ownerOff:ownerOff+identity.Bytes])
	a.Balance = binary.LittleEndian.Uint64(b[balanceOff : balanceOff+8])
	a.Data = append([]byte(nil), b[PrologueSize:]...)
	return a, nil
}

// Load reads the account for key and remembers its etag for the next Commit.
func (s *Store) Load(ctx context.Context, key identity.ID) (*account.Info, string, error) {
	blobPath := s.BlobPath(key)
	data, etag, err := s.objects.Get(ctx, blobPath)
	if err != nil {
		return nil, "", err
	}
	a, err := Decode(key, data)
	if err != nil {
		return nil, "", err
	}
	s.remember(key, etag)
	s.Log.Debugf("loaded %s: %d data bytes, etag %s", blobPath, len(a.Data), etag)
	return a, etag, nil
}

// Commit writes acct. An account that was loaded is only replaced if its blob
// is unchanged since; one that was not is only created if no blob exists.
func (s *Store) Commit(ctx context.Context, acct *account.Info) error {
	s.mu.Lock()
	etag, loaded := s.etags[acct.Key]
	s.mu.Unlock()

	return s.CommitETag(ctx, acct, etag, !loaded)
}

// CommitETag writes acct guarded by etag or, when creating, by the absence of
// any existing blob.
func (s *Store) CommitETag(ctx context.Context, acct *account.Info, etag string, creating bool) error {
	if etag == "" && !creating {
		return errors.New("accountstore: etag is required when updating an account")
	}

	blobPath := s.BlobPath(acct.Key)
	data := Encode(acct)
	newETag, err := s.objects.Put(ctx, blobPath, data, etag, creating)
	if err != nil {
		s.forget(acct.Key)
		return err
	}
	if newETag != "" {
		s.remember(acct.Key, newETag)
		return nil
	}
	s.refresh(ctx, acct.Key, blobPath, data)
	return nil
}

func (s *Store) remember(key identity.ID, etag string) {
	s.mu.Lock()
	s.etags[key] = etag
	s.mu.Unlock()
}

func (s *Store) forget(key identity.ID) {
	s.mu.Lock()
	delete(s.etags, key)
	s.mu.Unlock()
}

// refresh adopts the etag of the blob just written. If the content read back
// is not what was written, the account must be loaded again before the next
// commit.
func (s *Store) refresh(ctx context.Context, key identity.ID, blobPath string, written []byte) {
	data, etag, err := s.objects.Get(ctx, blobPath)
	if err != nil || etag == "" || !bytes.Equal(data, written) {
		s.Log.Infof("commit %s: could not confirm the written content, reload required", blobPath)
		s.forget(key)
		return
	}
	s.remember(key, etag)
}
