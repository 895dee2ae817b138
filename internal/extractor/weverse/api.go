package weverse

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bradenhilton/gdl-extractors/internal/domain"
	apperrors "github.com/bradenhilton/gdl-extractors/pkg/errors"
	"github.com/bradenhilton/gdl-extractors/pkg/logger"
	"github.com/google/uuid"
)

const (
	rootURL       = "https://weverse.io"
	baseAPIURL    = "https://global.apis.naver.com"
	accountAPIURL = "https://accountapi.weverse.io"

	// Fixed platform identity; required to reproduce valid signatures.
	appID            = "be4d79eb8fc7bd008ee82c8ec4ff6fd4"
	signSecret       = "1b9cb6378d959b45714bec49971ade22e6e24e42"
	accountAppSecret = "5419526f1c624b38b10787e5c10b2a7a"
	accountServiceID = "weverse"

	cookieDomain       = ".weverse.io"
	accessTokenCookie  = "we2_access_token"
	refreshTokenCookie = "we2_refresh_token"
	deviceIDCookie     = "we2_device_id"

	// The digest covers at most this many bytes of path+query.
	maxSignedLength = 255

	// Minimum remaining token lifetime, in seconds, to count as valid.
	minTokenLifetime = 3600
)

// api is the signed Weverse client for one resolution. Stateless between
// calls except for the device identifier and the token pair applied by
// the credential lifecycle.
type api struct {
	httpClient *http.Client
	log        logger.Logger

	// Content kind used to scope not-found errors.
	kind string

	wmdBase     string
	vodBase     string
	accountBase string
	root        string

	deviceID     string
	accessToken  string
	refreshToken string

	now func() time.Time
}

func newAPI(log logger.Logger, kind string) *api {
	return &api{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         log,
		kind:        kind,
		wmdBase:     baseAPIURL + "/weverse/wevweb",
		vodBase:     baseAPIURL + "/rmcnmv/rmcnmv",
		accountBase: accountAPIURL,
		root:        rootURL,
		now:         time.Now,
	}
}

func (a *api) setTokens(access, refresh string) {
	a.accessToken = access
	a.refreshToken = refresh
}

func (a *api) authenticated() bool {
	return a.accessToken != ""
}

func (a *api) headers() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Origin", a.root)
	h.Set("Referer", a.root+"/")
	if a.deviceID != "" {
		h.Set("WEV-device-Id", a.deviceID)
	}
	if a.accessToken != "" {
		h.Set("Authorization", "Bearer "+a.accessToken)
	}
	return h
}

func (a *api) tokenHeaders(accessToken string) http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("Origin", a.root)
	h.Set("Referer", a.root+"/")
	token := accessToken
	if token == "" {
		token = a.accessToken
	}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	h.Set("X-ACC-APP-SECRET", accountAppSecret)
	h.Set("X-ACC-SERVICE-ID", accountServiceID)
	h.Set("X-ACC-TRACE-ID", uuid.NewString())
	return h
}

func paramsDelimiter(endpoint string) string {
	if strings.Contains(endpoint, "?") {
		return "&"
	}
	return "?"
}

// messageDigest signs endpoint+sorted-query truncated to 255 bytes with
// the millisecond timestamp appended, HMAC-SHA1 over the shared secret.
// url.Values.Encode sorts by key, which makes the signature input
// deterministic regardless of parameter insertion order.
func (a *api) messageDigest(endpoint string, params url.Values, timestamp int64) string {
	msg := endpoint + paramsDelimiter(endpoint) + params.Encode()
	if len(msg) > maxSignedLength {
		msg = msg[:maxSignedLength]
	}
	msg += strconv.FormatInt(timestamp, 10)

	mac := hmac.New(sha1.New, []byte(signSecret))
	mac.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func cloneValues(params url.Values) url.Values {
	out := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// callSigned issues a signed request against an internally-routed
// endpoint, attaching the wmsgpad timestamp and wmd digest parameters.
func (a *api) callSigned(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	} else {
		params = cloneValues(params)
	}
	params.Set("appId", appID)
	params.Set("language", "en")
	params.Set("os", "WEB")
	params.Set("platform", "WEB")
	params.Set("wpf", "pc")

	timestamp := a.now().UnixMilli()
	digest := a.messageDigest(endpoint, params, timestamp)

	// The digest already covers the sorted parameter set; attachment
	// order of the signature parameters does not affect validity.
	params.Set("wmsgpad", strconv.FormatInt(timestamp, 10))
	params.Set("wmd", digest)

	rawURL := a.wmdBase + endpoint + paramsDelimiter(endpoint) + params.Encode()
	return a.call(ctx, method, rawURL, a.headers(), nil, out)
}

// call issues one request and maps the response per the failure policy:
// 401 and 403 and 404 are fatal; any other non-2xx response (and any
// transport failure) is logged and degrades to an empty result so that
// callers see "no data" instead of an error.
func (a *api) call(ctx context.Context, method, rawURL string, headers http.Header, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.log.Debug("Request failed, treating as empty response", "url", rawURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Wrap(apperrors.ErrAuthentication, "weverse rejected the request")
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrAuthorization, "access token is invalid or content requires membership")
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.Wrap(apperrors.ErrNotFound, fmt.Sprintf("weverse %s not found", a.kind))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		a.log.Debug("Unexpected response status, treating as empty response",
			"url", rawURL, "status", resp.StatusCode, "body", string(snippet))
		return nil
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		a.log.Debug("Failed to decode response, treating as empty response", "url", rawURL, "error", err)
	}
	return nil
}

// post fetches a single post. Without a bearer token the preview variant
// of the endpoint is used, which serves the subset of fields visible
// without authentication.
func (a *api) post(ctx context.Context, postID string) (*domain.Post, error) {
	endpoint := "/post/v1.0/post-" + postID
	params := url.Values{"fieldSet": {"postV1"}}
	if !a.authenticated() {
		endpoint += "/preview"
		params.Set("fieldSet", "postForPreview")
	}

	var post domain.Post
	if err := a.callSigned(ctx, http.MethodGet, endpoint, params, &post); err != nil {
		return nil, err
	}
	if post.PostID == "" {
		return nil, nil
	}
	return &post, nil
}

func (a *api) communityID(ctx context.Context, communityKeyword string) (int64, error) {
	endpoint := "/community/v1.0/communityIdUrlPathByUrlPathArtistCode"
	params := url.Values{"keyword": {communityKeyword}}

	var res struct {
		CommunityID int64 `json:"communityId"`
	}
	if err := a.callSigned(ctx, http.MethodGet, endpoint, params, &res); err != nil {
		return 0, err
	}
	if res.CommunityID == 0 {
		return 0, apperrors.Wrap(apperrors.ErrNotFound, fmt.Sprintf("weverse community %q not found", communityKeyword))
	}
	return res.CommunityID, nil
}

func (a *api) inKey(ctx context.Context, videoID string) (string, error) {
	endpoint := fmt.Sprintf("/video/v1.2/vod/%s/inKey", videoID)

	var res struct {
		InKey string `json:"inKey"`
	}
	if err := a.callSigned(ctx, http.MethodPost, endpoint, nil, &res); err != nil {
		return "", err
	}
	return res.InKey, nil
}

// mediaVideoList resolves the renditions of a media-kind video through
// the VOD play API, which needs a per-video inKey.
func (a *api) mediaVideoList(ctx context.Context, videoID, masterID string) ([]domain.Rendition, error) {
	key, err := a.inKey(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, nil
	}

	rawURL := fmt.Sprintf("%s/vod/play/v2.0/%s?key=%s", a.vodBase, masterID, url.QueryEscape(key))
	var res struct {
		Videos struct {
			List []domain.Rendition `json:"list"`
		} `json:"videos"`
	}
	if err := a.call(ctx, http.MethodGet, rawURL, a.headers(), nil, &res); err != nil {
		return nil, err
	}
	return res.Videos.List, nil
}

func (a *api) postVideoList(ctx context.Context, videoID string) ([]domain.Rendition, error) {
	endpoint := fmt.Sprintf("/cvideo/v1.0/cvideo-%s/playInfo", videoID)
	params := url.Values{"videoId": {videoID}}

	var res struct {
		PlayInfo struct {
			Videos struct {
				List []domain.Rendition `json:"list"`
			} `json:"videos"`
		} `json:"playInfo"`
	}
	if err := a.callSigned(ctx, http.MethodGet, endpoint, params, &res); err != nil {
		return nil, err
	}
	return res.PlayInfo.Videos.List, nil
}

func (a *api) memberPosts(memberID string) (*postIterator, error) {
	return a.paginate("/post/v1.0/member-"+memberID+"/posts", url.Values{
		"fieldSet":   {"postsV1"},
		"filterType": {"DEFAULT"},
		"limit":      {"20"},
		"sortType":   {"LATEST"},
	})
}

func (a *api) memberMoments(memberID string) (*postIterator, error) {
	return a.paginate("/post/v1.0/member-"+memberID+"/posts", url.Values{
		"fieldSet":   {"postsV1"},
		"filterType": {"MOMENT"},
		"limit":      {"1"},
	})
}

func (a *api) feedPosts(ctx context.Context, communityKeyword, feedName string) (*postIterator, error) {
	communityID, err := a.communityID(ctx, communityKeyword)
	if err != nil {
		return nil, err
	}
	return a.paginate(fmt.Sprintf("/post/v1.0/community-%d/%sTabPosts", communityID, feedName), url.Values{
		"fieldSet":   {"postsV1"},
		"limit":      {"20"},
		"pagingType": {"CURSOR"},
	})
}

func (a *api) communityMedia(ctx context.Context, communityKeyword, filterType string) (*postIterator, error) {
	communityID, err := a.communityID(ctx, communityKeyword)
	if err != nil {
		return nil, err
	}
	return a.paginate(fmt.Sprintf("/media/v1.0/community-%d/more", communityID), url.Values{
		"fieldSet":   {"postsV1"},
		"filterType": {filterType},
	})
}

func (a *api) allCommunityMedia(ctx context.Context, communityKeyword string) (*postIterator, error) {
	communityID, err := a.communityID(ctx, communityKeyword)
	if err != nil {
		return nil, err
	}
	return a.paginate(fmt.Sprintf("/media/v1.0/community-%d/searchAllMedia", communityID), url.Values{
		"fieldSet":  {"postsV1"},
		"sortOrder": {"DESC"},
	})
}

func (a *api) mediaByCategory(categoryID string) (*postIterator, error) {
	return a.paginate(fmt.Sprintf("/media/v1.0/category-%s/mediaPosts", categoryID), url.Values{
		"fieldSet":  {"postsV1"},
		"sortOrder": {"DESC"},
	})
}

// tokenStatus is the introspection result. refreshRequired defaults to
// true when the server omits it, so a zero response reads as expired.
type tokenStatus struct {
	ExpiresIn       int64 `json:"expiresIn"`
	RefreshRequired *bool `json:"refreshRequired"`
}

func (s tokenStatus) valid() bool {
	return s.ExpiresIn >= minTokenLifetime && s.RefreshRequired != nil && !*s.RefreshRequired
}

func (a *api) validateToken(ctx context.Context, accessToken string) (tokenStatus, error) {
	var st tokenStatus
	if accessToken == "" && a.accessToken == "" {
		return st, nil
	}
	err := a.call(ctx, http.MethodGet, a.accountBase+"/api/v1/token/validate", a.tokenHeaders(accessToken), nil, &st)
	return st, err
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (a *api) refreshAccessToken(ctx context.Context, accessToken, refreshToken string) (tokenPair, error) {
	var pair tokenPair
	if accessToken == "" || refreshToken == "" {
		return pair, nil
	}
	body := map[string]string{"refreshToken": refreshToken}
	err := a.call(ctx, http.MethodPost, a.accountBase+"/api/v1/token/refresh", a.tokenHeaders(accessToken), body, &pair)
	return pair, err
}
