package accountstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-nftstaking/account"
	"github.com/forestrie/go-nftstaking/host"
	"github.com/forestrie/go-nftstaking/identity"
	"github.com/forestrie/go-nftstaking/instruction"
)

var _ host.Committer = (*Store)(nil)

type memObject struct {
	data []byte
	etag string
}

// memObjects is a conditional object store. With hideETags set, Put does not
// report the new etag.
type memObjects struct {
	objects   map[string]memObject
	version   int
	hideETags bool
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string]memObject{}}
}

func (m *memObjects) Get(ctx context.Context, path string) ([]byte, string, error) {
	o, ok := m.objects[path]
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", path, ErrAccountNotFound)
	}
	return bytes.Clone(o.data), o.etag, nil
}

func (m *memObjects) Put(ctx context.Context, path string, data []byte, etag string, failIfExists bool) (string, error) {
	o, exists := m.objects[path]
	if failIfExists && exists {
		return "", fmt.Errorf("%s: %w", path, ErrStale)
	}
	if etag != "" && (!exists || o.etag != etag) {
		return "", fmt.Errorf("%s: %w", path, ErrStale)
	}
	m.version++
	o = memObject{data: bytes.Clone(data), etag: fmt.Sprintf("etag-%d", m.version)}
	m.objects[path] = o
	if m.hideETags {
		return "", nil
	}
	return o.etag, nil
}

func testLog() logger.Logger {
	logger.New("NOOP")
	return logger.Sugar.WithServiceName("accountstore")
}

func TestEncodeDecode(t *testing.T) {
	a := &account.Info{Key: identity.ID{1}, Owner: identity.ID{2}, Balance: 0x0102030405060708, Data: []byte{9, 9, 9}}
	b := Encode(a)
	require.Len(t, b, PrologueSize+3)
	assert.Equal(t, byte(2), b[0])
	assert.Equal(t, byte(0x08), b[32])
	assert.Equal(t, []byte{9, 9, 9}, b[PrologueSize:])

	got, err := Decode(a.Key, b)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = Decode(a.Key, b[:PrologueSize-1])
	require.ErrorIs(t, err, ErrShortBlob)
}

func TestBlobPath(t *testing.T) {
	key := identity.ID{}
	s := New(testLog(), newMemObjects())
	assert.Equal(t, "v1/accounts/11111111111111111111111111111111.acct", s.BlobPath(key))

	s = New(testLog(), newMemObjects(), WithPrefix("tenant/x/"))
	assert.Equal(t, "tenant/x/11111111111111111111111111111111.acct", s.BlobPath(key))
}

func TestCommitCreatesThenGuards(t *testing.T) {
	ctx := context.Background()
	for _, hide := range []bool{false, true} {
		t.Run(fmt.Sprintf("hideETags=%v", hide), func(t *testing.T) {
			objects := newMemObjects()
			objects.hideETags = hide
			s := New(testLog(), objects)
			a := account.New(identity.ID{1}, identity.ID{2}, 10, 4)

			_, _, err := s.Load(ctx, a.Key)
			require.ErrorIs(t, err, ErrAccountNotFound)

			require.NoError(t, s.Commit(ctx, a))
			a.Data[0] = 1
			require.NoError(t, s.Commit(ctx, a))

			got, etag, err := s.Load(ctx, a.Key)
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 0, 0, 0}, got.Data)
			assert.NotEmpty(t, etag)

			// a second store creating the same account loses
			other := New(testLog(), objects)
			require.ErrorIs(t, other.Commit(ctx, a), ErrStale)

			// after loading it may update, and the first store is now stale
			_, _, err = other.Load(ctx, a.Key)
			require.NoError(t, err)
			require.NoError(t, other.Commit(ctx, a))
			require.ErrorIs(t, s.Commit(ctx, a), ErrStale)

			// a failed commit forgets the etag; the next attempt needs a reload
			require.ErrorIs(t, s.Commit(ctx, a), ErrStale)
			_, _, err = s.Load(ctx, a.Key)
			require.NoError(t, err)
			require.NoError(t, s.Commit(ctx, a))
		})
	}
}

func TestCommitETagRequiresETagForUpdate(t *testing.T) {
	s := New(testLog(), newMemObjects())
	err := s.CommitETag(context.Background(), account.New(identity.ID{1}, identity.ID{}, 0, 0), "", false)
	require.Error(t, err)
}

type fakeBlobs struct {
	data  map[string][]byte
	etag  string
	puts  int
	nopts int
}

func (f *fakeBlobs) Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error) {
	b, ok := f.data[identity]
	if !ok {
		return nil, fmt.Errorf("%s: %w", identity, ErrAccountNotFound)
	}
	etag := f.etag
	return &azblob.ReaderResponse{Reader: io.NopCloser(bytes.NewReader(b)), ETag: &etag}, nil
}

func (f *fakeBlobs) Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error) {
	b, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	f.data[identity] = b
	f.puts++
	f.nopts = len(opts)
	return &azblob.WriteResponse{}, nil
}

func TestAzureObjects(t *testing.T) {
	ctx := context.Background()
	blobs := &fakeBlobs{data: map[string][]byte{}, etag: "0x8DC"}
	s := New(testLog(), NewAzureObjects(blobs))
	a := account.New(identity.ID{3}, identity.ID{4}, 7, 2)

	require.NoError(t, s.Commit(ctx, a))
	assert.Equal(t, 1, blobs.puts)
	assert.Equal(t, 1, blobs.nopts)
	assert.Equal(t, Encode(a), blobs.data[s.BlobPath(a.Key)])

	// the etag read back after the create guards the update
	require.NoError(t, s.Commit(ctx, a))
	assert.Equal(t, 1, blobs.nopts)

	got, etag, err := s.Load(ctx, a.Key)
	require.NoError(t, err)
	assert.Equal(t, "0x8DC", etag)
	assert.Equal(t, a.Data, got.Data)

	_, _, err = s.Load(ctx, identity.ID{5})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestWrapStorageErrorPassesThrough(t *testing.T) {
	assert.NoError(t, wrapStorageError(nil))
	err := fmt.Errorf("boom")
	assert.Equal(t, err, wrapStorageError(err))
}

type incrementProgram struct{}

func (incrementProgram) Process(accts []*account.Info, input []byte) error {
	accts[0].Data[0]++
	return nil
}

func TestHostPersistsThroughStore(t *testing.T) {
	ctx := context.Background()
	objects := newMemObjects()
	s := New(testLog(), objects)

	programID := identity.ID{0x50}
	counter := account.New(identity.ID{0x60}, programID, 0, 1)
	require.NoError(t, s.Commit(ctx, counter))

	loaded, _, err := s.Load(ctx, counter.Key)
	require.NoError(t, err)

	h := host.New(testLog(), host.WithCommitter(s))
	h.Deploy(programID, incrementProgram{})
	h.Register(loaded)

	ins := instruction.Instruction{ProgramID: programID, Accounts: []account.Meta{account.Writable(counter.Key, false)}}
	require.NoError(t, h.Invoke(ctx, ins))
	require.NoError(t, h.Invoke(ctx, ins))

	stored, _, err := s.Load(ctx, counter.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, stored.Data)

	// another writer moves the blob on; the host invocation then fails and
	// leaves its own copy untouched
	other := New(testLog(), objects)
	theirs, _, err := other.Load(ctx, counter.Key)
	require.NoError(t, err)
	theirs.Data[0] = 9
	require.NoError(t, other.Commit(ctx, theirs))

	require.ErrorIs(t, h.Invoke(ctx, ins), ErrStale)
	mine, _ := h.Account(counter.Key)
	assert.Equal(t, []byte{2}, mine.Data)
}
