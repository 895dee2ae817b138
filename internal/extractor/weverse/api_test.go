package weverse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	apperrors "github.com/bradenhilton/gdl-extractors/pkg/errors"
	"github.com/bradenhilton/gdl-extractors/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.New(logger.Opts{})
}

func newTestAPI(kind string) *api {
	a := newAPI(testLogger(), kind)
	a.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return a
}

func TestMessageDigestDeterministic(t *testing.T) {
	a := newTestAPI(kindPost)
	params := url.Values{"fieldSet": {"postV1"}, "appId": {appID}}

	first := a.messageDigest("/post/v1.0/post-1-234", params, 1700000000000)
	second := a.messageDigest("/post/v1.0/post-1-234", params, 1700000000000)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestMessageDigestIgnoresInsertionOrder(t *testing.T) {
	a := newTestAPI(kindPost)

	ordered := url.Values{}
	ordered.Set("appId", appID)
	ordered.Set("fieldSet", "postV1")
	ordered.Set("language", "en")

	reversed := url.Values{}
	reversed.Set("language", "en")
	reversed.Set("fieldSet", "postV1")
	reversed.Set("appId", appID)

	assert.Equal(t,
		a.messageDigest("/post/v1.0/post-1-234", ordered, 1700000000000),
		a.messageDigest("/post/v1.0/post-1-234", reversed, 1700000000000))
}

func TestMessageDigestSensitivity(t *testing.T) {
	a := newTestAPI(kindPost)
	params := url.Values{"fieldSet": {"postV1"}}

	base := a.messageDigest("/post/v1.0/post-1-234", params, 1700000000000)

	changed := url.Values{"fieldSet": {"postsV1"}}
	assert.NotEqual(t, base, a.messageDigest("/post/v1.0/post-1-234", changed, 1700000000000))

	assert.NotEqual(t, base, a.messageDigest("/post/v1.0/post-1-234", params, 1700000000001))
}

func TestMessageDigestTruncation(t *testing.T) {
	a := newTestAPI(kindPost)

	// Both inputs agree on the first 255 bytes; the difference sits past
	// the truncation point and must not affect the digest.
	long := url.Values{"q": {strings.Repeat("a", 300)}}
	longer := url.Values{"q": {strings.Repeat("a", 290) + "different"}}
	assert.Equal(t,
		a.messageDigest("/post", long, 1700000000000),
		a.messageDigest("/post", longer, 1700000000000))

	// A difference inside the signed window still matters.
	early := url.Values{"q": {"b" + strings.Repeat("a", 299)}}
	assert.NotEqual(t,
		a.messageDigest("/post", long, 1700000000000),
		a.messageDigest("/post", early, 1700000000000))
}

func TestCallSignedAttachesSignatureParams(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := newTestAPI(kindPost)
	a.wmdBase = srv.URL

	var out struct{}
	require.NoError(t, a.callSigned(context.Background(), http.MethodGet, "/post/v1.0/post-1-234", nil, &out))

	assert.Equal(t, appID, got.Get("appId"))
	assert.Equal(t, "en", got.Get("language"))
	assert.Equal(t, "WEB", got.Get("os"))
	assert.Equal(t, "WEB", got.Get("platform"))
	assert.Equal(t, "pc", got.Get("wpf"))
	assert.Equal(t, "1700000000000", got.Get("wmsgpad"))
	assert.NotEmpty(t, got.Get("wmd"))
}

func TestCallStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"unauthorized is fatal", http.StatusUnauthorized, func(t *testing.T, err error) {
			assert.True(t, apperrors.IsAuthentication(err))
		}},
		{"forbidden is fatal", http.StatusForbidden, func(t *testing.T, err error) {
			assert.True(t, apperrors.IsAuthorization(err))
		}},
		{"not found is fatal", http.StatusNotFound, func(t *testing.T, err error) {
			assert.True(t, apperrors.IsNotFound(err))
			assert.Contains(t, err.Error(), "post")
		}},
		{"server error degrades to empty", http.StatusInternalServerError, func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
		{"bad gateway degrades to empty", http.StatusBadGateway, func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			a := newTestAPI(kindPost)
			a.wmdBase = srv.URL

			var out struct{}
			tc.check(t, a.callSigned(context.Background(), http.MethodGet, "/x", nil, &out))
		})
	}
}

func TestCallTransportFailureDegrades(t *testing.T) {
	a := newTestAPI(kindPost)
	a.wmdBase = "http://127.0.0.1:1"

	var out struct {
		PostID string `json:"postId"`
	}
	err := a.callSigned(context.Background(), http.MethodGet, "/x", nil, &out)
	assert.NoError(t, err)
	assert.Empty(t, out.PostID)
}

func TestCallMalformedBodyDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"postId": `))
	}))
	defer srv.Close()

	a := newTestAPI(kindPost)
	a.wmdBase = srv.URL

	var out struct {
		PostID string `json:"postId"`
	}
	assert.NoError(t, a.callSigned(context.Background(), http.MethodGet, "/x", nil, &out))
	assert.Empty(t, out.PostID)
}

func TestPostPreviewFallback(t *testing.T) {
	var paths []string
	var fieldSets []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fieldSets = append(fieldSets, r.URL.Query().Get("fieldSet"))
		_, _ = w.Write([]byte(`{"postId":"1-234"}`))
	}))
	defer srv.Close()

	a := newTestAPI(kindPost)
	a.wmdBase = srv.URL

	post, err := a.post(context.Background(), "1-234")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "1-234", post.PostID)
	assert.Equal(t, "/post/v1.0/post-1-234/preview", paths[0])
	assert.Equal(t, "postForPreview", fieldSets[0])

	a.setTokens("access", "refresh")
	_, err = a.post(context.Background(), "1-234")
	require.NoError(t, err)
	assert.Equal(t, "/post/v1.0/post-1-234", paths[1])
	assert.Equal(t, "postV1", fieldSets[1])
}

func TestPostEmptyResponseIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := newTestAPI(kindPost)
	a.wmdBase = srv.URL

	post, err := a.post(context.Background(), "1-234")
	assert.NoError(t, err)
	assert.Nil(t, post)
}

func TestCommunityIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	a := newTestAPI(kindFeed)
	a.wmdBase = srv.URL

	_, err := a.communityID(context.Background(), "nosuchgroup")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTokenStatusValid(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name   string
		status tokenStatus
		want   bool
	}{
		{"fresh token", tokenStatus{ExpiresIn: 7200, RefreshRequired: &no}, true},
		{"expiring soon", tokenStatus{ExpiresIn: 100, RefreshRequired: &no}, false},
		{"refresh required", tokenStatus{ExpiresIn: 7200, RefreshRequired: &yes}, false},
		{"flag omitted reads as expired", tokenStatus{ExpiresIn: 7200}, false},
		{"zero value", tokenStatus{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.status.valid())
		})
	}
}
