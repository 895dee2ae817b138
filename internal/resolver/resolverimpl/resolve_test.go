package resolverimpl

import (
	"context"
	"errors"
	"testing"

	"github.com/bradenhilton/gdl-extractors/internal/extractor"
	"github.com/bradenhilton/gdl-extractors/pkg/config"
	apperrors "github.com/bradenhilton/gdl-extractors/pkg/errors"
	"github.com/bradenhilton/gdl-extractors/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	directories []extractor.Metadata
	files       []extractor.FileDescriptor
	fileErr     error
}

func (f *fakeSink) Directory(_ context.Context, meta extractor.Metadata) error {
	f.directories = append(f.directories, meta)
	return nil
}

func (f *fakeSink) File(_ context.Context, file extractor.FileDescriptor, _ extractor.Metadata) error {
	if f.fileErr != nil {
		return f.fileErr
	}
	f.files = append(f.files, file)
	return nil
}

type fakeArchive struct {
	keys      map[string]bool
	existsErr error
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{keys: map[string]bool{}}
}

func (f *fakeArchive) Exists(_ context.Context, key string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.keys[key], nil
}

func (f *fakeArchive) Create(_ context.Context, key string) error {
	f.keys[key] = true
	return nil
}

type stubExtractor struct {
	records []extractor.Record
	err     error
	calls   *int
}

func (s *stubExtractor) Items(context.Context) ([]extractor.Record, error) {
	if s.calls != nil {
		*s.calls++
	}
	return s.records, s.err
}

func stub(records []extractor.Record, err error, calls *int) extractor.Factory {
	return func(string, []string) extractor.Extractor {
		return &stubExtractor{records: records, err: err, calls: calls}
	}
}

func newTestResolver(t *testing.T, r *extractor.Registry, s *fakeSink, a *fakeArchive) *ResolverImpl {
	t.Helper()
	return New(Opts{
		Registry:    r,
		Sink:        s,
		ArchiveRepo: a,
		Logger:      logger.New(logger.Opts{}),
		Config:      &config.Config{},
	})
}

func postRecords(postID, fileID string) []extractor.Record {
	meta := extractor.Metadata{"post_id": postID}
	return []extractor.Record{
		extractor.Directory{Metadata: meta},
		extractor.URL{
			File:     extractor.FileDescriptor{ID: fileID, URL: "https://cdn.example.com/" + fileID + ".jpg", Num: 1},
			Metadata: meta,
		},
	}
}

func TestResolveUnsupportedURL(t *testing.T) {
	r := extractor.NewRegistry()
	res := newTestResolver(t, r, &fakeSink{}, newFakeArchive())

	err := res.Resolve(context.Background(), "https://unknown.example.com/thing")
	assert.True(t, apperrors.IsUnsupported(err))
}

func TestResolveDeliversRecords(t *testing.T) {
	r := extractor.NewRegistry()
	r.MustRegister("site:post", `https://site\.example/post/\d+`, stub(postRecords("0-1", "f1"), nil, nil))

	sink := &fakeSink{}
	archiveRepo := newFakeArchive()
	res := newTestResolver(t, r, sink, archiveRepo)

	require.NoError(t, res.Resolve(context.Background(), "https://site.example/post/1"))
	require.Len(t, sink.directories, 1)
	require.Len(t, sink.files, 1)
	assert.Equal(t, "f1", sink.files[0].ID)
	assert.True(t, archiveRepo.keys["weverse_0-1_f1"])
}

func TestResolveSkipsArchivedFiles(t *testing.T) {
	r := extractor.NewRegistry()
	r.MustRegister("site:post", `https://site\.example/post/\d+`, stub(postRecords("0-1", "f1"), nil, nil))

	sink := &fakeSink{}
	archiveRepo := newFakeArchive()
	res := newTestResolver(t, r, sink, archiveRepo)

	require.NoError(t, res.Resolve(context.Background(), "https://site.example/post/1"))
	require.NoError(t, res.Resolve(context.Background(), "https://site.example/post/1"))

	assert.Len(t, sink.files, 1)
	assert.Len(t, sink.directories, 2)
}

func TestResolveArchiveLookupFailureStillDelivers(t *testing.T) {
	r := extractor.NewRegistry()
	r.MustRegister("site:post", `https://site\.example/post/\d+`, stub(postRecords("0-1", "f1"), nil, nil))

	sink := &fakeSink{}
	archiveRepo := newFakeArchive()
	archiveRepo.existsErr = errors.New("connection reset")
	res := newTestResolver(t, r, sink, archiveRepo)

	require.NoError(t, res.Resolve(context.Background(), "https://site.example/post/1"))
	assert.Len(t, sink.files, 1)
}

func TestResolveFollowsQueueRecords(t *testing.T) {
	r := extractor.NewRegistry()
	r.MustRegister("site:feed", `https://site\.example/feed`, stub([]extractor.Record{
		extractor.Queue{URL: "https://site.example/post/1", Extractor: "site:post"},
		extractor.Queue{URL: "https://site.example/post/2", Extractor: "site:post"},
	}, nil, nil))
	r.MustRegister("site:post", `https://site\.example/post/(\d+)`, stub(postRecords("0-1", "f1"), nil, nil))

	sink := &fakeSink{}
	res := newTestResolver(t, r, sink, newFakeArchive())

	require.NoError(t, res.Resolve(context.Background(), "https://site.example/feed"))
	assert.Len(t, sink.directories, 2)
}

func TestResolveQueueFailureDoesNotAbortSiblings(t *testing.T) {
	r := extractor.NewRegistry()
	r.MustRegister("site:feed", `https://site\.example/feed`, stub([]extractor.Record{
		extractor.Queue{URL: "https://site.example/bad/1", Extractor: "site:bad"},
		extractor.Queue{URL: "https://site.example/post/2", Extractor: "site:post"},
	}, nil, nil))
	r.MustRegister("site:bad", `https://site\.example/bad/\d+`,
		stub(nil, apperrors.Wrap(apperrors.ErrNotFound, "gone"), nil))
	r.MustRegister("site:post", `https://site\.example/post/\d+`, stub(postRecords("0-2", "f2"), nil, nil))

	sink := &fakeSink{}
	res := newTestResolver(t, r, sink, newFakeArchive())

	require.NoError(t, res.Resolve(context.Background(), "https://site.example/feed"))
	require.Len(t, sink.files, 1)
	assert.Equal(t, "f2", sink.files[0].ID)
}

func TestResolveBoundsQueueDepth(t *testing.T) {
	var calls int
	r := extractor.NewRegistry()
	r.MustRegister("site:loop", `https://site\.example/loop`, stub([]extractor.Record{
		extractor.Queue{URL: "https://site.example/loop", Extractor: "site:loop"},
	}, nil, &calls))

	res := newTestResolver(t, r, &fakeSink{}, newFakeArchive())

	require.NoError(t, res.Resolve(context.Background(), "https://site.example/loop"))
	assert.Equal(t, maxQueueDepth+1, calls)
}

func TestResolveAllContinuesPastFailures(t *testing.T) {
	r := extractor.NewRegistry()
	r.MustRegister("site:post", `https://site\.example/post/\d+`, stub(postRecords("0-1", "f1"), nil, nil))

	sink := &fakeSink{}
	res := newTestResolver(t, r, sink, newFakeArchive())

	res.ResolveAll(context.Background(), []string{
		"https://unknown.example.com/thing",
		"https://site.example/post/1",
	})

	assert.Len(t, sink.files, 1)
}

func TestArchiveKey(t *testing.T) {
	rec := extractor.URL{
		File:     extractor.FileDescriptor{ID: "f1"},
		Metadata: extractor.Metadata{"post_id": "0-1"},
	}
	assert.Equal(t, "weverse_0-1_f1", archiveKey(rec))

	rec.Metadata = extractor.Metadata{}
	assert.Empty(t, archiveKey(rec))

	rec.Metadata = extractor.Metadata{"post_id": "0-1"}
	rec.File.ID = ""
	assert.Empty(t, archiveKey(rec))
}
