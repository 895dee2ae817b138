package weverse

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bradenhilton/gdl-extractors/internal/domain"
	apperrors "github.com/bradenhilton/gdl-extractors/pkg/errors"
)

// cursorParam is the query key the server expects the continuation
// cursor under.
const cursorParam = "after"

// postIterator walks a cursor-paginated post listing. Cursor state is
// local to one iterator; it cannot be restarted. The loop terminates
// only when the server omits the cursor from the paging metadata.
type postIterator struct {
	api      *api
	endpoint string
	params   url.Values
	buf      []domain.Post
	done     bool
}

// paginate opens an iterator over endpoint. Pagination endpoints require
// authentication; an unauthenticated client fails before the first call.
func (a *api) paginate(endpoint string, params url.Values) (*postIterator, error) {
	if !a.authenticated() {
		return nil, apperrors.Wrap(apperrors.ErrAuthentication, "pagination requires authentication")
	}
	if params == nil {
		params = url.Values{}
	} else {
		params = cloneValues(params)
	}
	return &postIterator{api: a, endpoint: endpoint, params: params}, nil
}

type pageResponse struct {
	Data   []domain.Post `json:"data"`
	Paging struct {
		NextParams map[string]string `json:"nextParams"`
	} `json:"paging"`
}

// Next returns the next non-text-only post, or ok=false when the listing
// is exhausted. An empty or degraded page without a cursor ends the
// sequence rather than failing.
func (it *postIterator) Next(ctx context.Context) (*domain.Post, bool, error) {
	for {
		if len(it.buf) > 0 {
			post := it.buf[0]
			it.buf = it.buf[1:]
			return &post, true, nil
		}
		if it.done {
			return nil, false, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		var res pageResponse
		if err := it.api.callSigned(ctx, http.MethodGet, it.endpoint, it.params, &res); err != nil {
			return nil, false, err
		}

		for _, post := range res.Data {
			if !isTextOnly(&post) {
				it.buf = append(it.buf, post)
			}
		}

		cursor, ok := res.Paging.NextParams[cursorParam]
		if !ok {
			it.done = true
		} else {
			it.params.Set(cursorParam, cursor)
		}
	}
}

// isTextOnly reports whether a post carries no emittable content: no
// attachments, no extension content, and zero media counts in its
// summary. Malformed posts missing all three read as text-only.
func isTextOnly(post *domain.Post) bool {
	if post.HasAttachments() || post.HasExtension() {
		return false
	}
	if post.Summary != nil && post.Summary.PhotoCount+post.Summary.VideoCount > 0 {
		return false
	}
	return true
}
