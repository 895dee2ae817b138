// Package weverse implements the handler family for weverse.io content:
// posts, member and community feeds, moments, and media, resolved
// through the platform's signed private API.
package weverse

import (
	"context"
	"sync"
	"time"

	"github.com/bradenhilton/gdl-extractors/internal/domain"
	"github.com/bradenhilton/gdl-extractors/internal/extractor"
	"github.com/bradenhilton/gdl-extractors/internal/repositories/credential"
	"github.com/bradenhilton/gdl-extractors/pkg/config"
	"github.com/bradenhilton/gdl-extractors/pkg/logger"
	"go.uber.org/fx"
)

const Category = "weverse"

const (
	basePattern     = `(?:https?://)?(?:m\.)?weverse\.io/([^/?#]+)`
	memberIDPattern = `/([a-f0-9]+)`
	postIDPattern   = `/(\d-\d+)`
)

// Content kinds; also used to scope not-found errors.
const (
	kindPost          = "post"
	kindMember        = "member"
	kindFeed          = "feed"
	kindMoment        = "moment"
	kindMoments       = "moments"
	kindMedia         = "media"
	kindMediaTab      = "media-tab"
	kindMediaCategory = "media-category"
)

type Opts struct {
	fx.In

	Config      *config.Config
	Logger      logger.Logger
	Credentials credential.Repository
}

// Module holds the dependencies shared by every weverse handler instance
// and the memoized credential decision.
type Module struct {
	cfg   *config.Config
	log   logger.Logger
	creds credential.Repository

	mu       sync.Mutex
	decision *loginDecision
}

func New(opts Opts) *Module {
	return &Module{
		cfg:   opts.Config,
		log:   opts.Logger,
		creds: opts.Credentials,
	}
}

// Register adds the weverse handler family to the registry. The order is
// an explicit, deterministic table; earlier entries win on overlap.
func (m *Module) Register(r *extractor.Registry) {
	r.MustRegister(Category+":post", basePattern+`/(?:artist|fanpost)`+postIDPattern,
		func(url string, match []string) extractor.Extractor {
			return &postExtractor{base: m.newBase(url, match[1], kindPost), postID: match[2]}
		})
	r.MustRegister(Category+":member", basePattern+`/profile`+memberIDPattern+`$`,
		func(url string, match []string) extractor.Extractor {
			return &memberExtractor{base: m.newBase(url, match[1], kindMember), memberID: match[2]}
		})
	r.MustRegister(Category+":feed", basePattern+`/(feed|artist)$`,
		func(url string, match []string) extractor.Extractor {
			return &feedExtractor{base: m.newBase(url, match[1], kindFeed), feedName: match[2]}
		})
	r.MustRegister(Category+":moment", basePattern+`/moment`+memberIDPattern+`/post`+postIDPattern,
		func(url string, match []string) extractor.Extractor {
			return &momentExtractor{base: m.newBase(url, match[1], kindMoment), postID: match[3]}
		})
	r.MustRegister(Category+":moments", basePattern+`/moment`+memberIDPattern+`$`,
		func(url string, match []string) extractor.Extractor {
			return &momentsExtractor{base: m.newBase(url, match[1], kindMoments), memberID: match[2]}
		})
	r.MustRegister(Category+":media", basePattern+`/media`+postIDPattern,
		func(url string, match []string) extractor.Extractor {
			return &mediaExtractor{base: m.newBase(url, match[1], kindMedia), postID: match[2]}
		})
	r.MustRegister(Category+":media-tab", basePattern+`/media(?:/(all|membership|new))?$`,
		func(url string, match []string) extractor.Extractor {
			return &mediaTabExtractor{base: m.newBase(url, match[1], kindMediaTab), tabName: match[2]}
		})
	r.MustRegister(Category+":media-category", basePattern+`/media/category/(\d+)`,
		func(url string, match []string) extractor.Extractor {
			return &mediaCategoryExtractor{base: m.newBase(url, match[1], kindMediaCategory), categoryID: match[2]}
		})
}

// base carries per-resolution state common to every handler kind.
type base struct {
	mod              *Module
	url              string
	communityKeyword string
	kind             string
	api              *api
	embeds           bool
	videos           bool
}

func (m *Module) newBase(url, communityKeyword, kind string) *base {
	return &base{
		mod:              m,
		url:              url,
		communityKeyword: communityKeyword,
		kind:             kind,
		api:              newAPI(m.log, kind),
		embeds:           m.cfg.Weverse.Embeds,
		videos:           m.cfg.Weverse.Videos,
	}
}

func (b *base) login(ctx context.Context) error {
	return b.mod.login(ctx, b.api)
}

// resolvePost fetches one post and turns it into the record stream: a
// Directory record followed by one URL record per file. Text-only posts
// yield nothing.
func (b *base) resolvePost(ctx context.Context, postID string) ([]extractor.Record, error) {
	if err := b.login(ctx); err != nil {
		return nil, err
	}

	post, err := b.api.post(ctx, postID)
	if err != nil || post == nil {
		return nil, err
	}

	var files []extractor.FileDescriptor
	switch {
	case post.HasAttachments():
		files, err = b.resolveAttachments(ctx, post)
	case post.HasExtension():
		if b.kind == kindMoment {
			files, err = b.resolveMoment(ctx, post)
		} else {
			files, err = b.resolveMedia(ctx, post.Extension)
		}
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	meta := b.metadata(post)
	records := make([]extractor.Record, 0, len(files)+1)
	records = append(records, extractor.Directory{Metadata: meta})
	for _, file := range files {
		records = append(records, extractor.URL{File: file, Metadata: meta})
	}
	return records, nil
}

// queuePosts paginates a listing and emits one Queue record per post,
// naming the extractor that should resolve the follow-up URL.
func (b *base) queuePosts(ctx context.Context, target string, open func(context.Context) (*postIterator, error)) ([]extractor.Record, error) {
	if err := b.login(ctx); err != nil {
		return nil, err
	}

	it, err := open(ctx)
	if err != nil {
		return nil, err
	}

	var records []extractor.Record
	for {
		post, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return records, nil
		}
		records = append(records, extractor.Queue{URL: post.ShareURL, Extractor: target})
	}
}

// metadata assembles the directory metadata shared by a post's records.
func (b *base) metadata(post *domain.Post) extractor.Metadata {
	postURL := post.ShareURL
	if postURL == "" {
		postURL = b.url
	}

	data := extractor.Metadata{
		"date":         time.UnixMilli(post.PublishedAt).UTC(),
		"post_url":     postURL,
		"post_id":      post.PostID,
		"post_type":    post.PostType,
		"section_type": post.SectionType,
	}

	if post.HideFromArtist != nil {
		data["hide_from_artist"] = *post.HideFromArtist
	}
	if post.MembershipOnly != nil {
		data["membership_only"] = *post.MembershipOnly
	}
	if len(post.Tags) > 0 {
		data["tags"] = post.Tags
	}

	if post.Author != nil {
		name := post.Author.ProfileName
		if post.Author.ArtistOfficialProfile != nil {
			name = post.Author.ArtistOfficialProfile.OfficialName
		}
		data["author"] = extractor.Metadata{
			"id":           post.Author.MemberID,
			"name":         name,
			"profile_type": post.Author.ProfileType,
		}
	}

	if post.Community != nil {
		data["community"] = extractor.Metadata{
			"id":          post.Community.CommunityID,
			"name":        post.Community.CommunityName,
			"artist_code": post.Community.ArtistCode,
		}
	}

	if post.Extension != nil && post.Extension.MediaInfo != nil {
		mediaInfo := post.Extension.MediaInfo
		categories := make([]extractor.Metadata, 0, len(mediaInfo.Categories))
		for _, category := range mediaInfo.Categories {
			categories = append(categories, extractor.Metadata{
				"id":    category.ID,
				"type":  category.Type,
				"title": category.Title,
			})
		}
		data["title"] = mediaInfo.Title
		data["media_type"] = mediaInfo.MediaType
		data["categories"] = categories
	}

	if moment := post.Moment(); moment != nil {
		data["expire_at"] = time.UnixMilli(moment.ExpireAt).UTC()
	}

	return data
}

type postExtractor struct {
	*base
	postID string
}

func (e *postExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.resolvePost(ctx, e.postID)
}

type momentExtractor struct {
	*base
	postID string
}

func (e *momentExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.resolvePost(ctx, e.postID)
}

type mediaExtractor struct {
	*base
	postID string
}

func (e *mediaExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.resolvePost(ctx, e.postID)
}

type memberExtractor struct {
	*base
	memberID string
}

func (e *memberExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.queuePosts(ctx, Category+":post", func(context.Context) (*postIterator, error) {
		return e.api.memberPosts(e.memberID)
	})
}

type feedExtractor struct {
	*base
	feedName string
}

func (e *feedExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.queuePosts(ctx, Category+":post", func(ctx context.Context) (*postIterator, error) {
		return e.api.feedPosts(ctx, e.communityKeyword, e.feedName)
	})
}

type momentsExtractor struct {
	*base
	memberID string
}

func (e *momentsExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.queuePosts(ctx, Category+":moment", func(context.Context) (*postIterator, error) {
		return e.api.memberMoments(e.memberID)
	})
}

type mediaTabExtractor struct {
	*base
	tabName string
}

func (e *mediaTabExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.queuePosts(ctx, Category+":media", func(ctx context.Context) (*postIterator, error) {
		switch e.tabName {
		case "new":
			return e.api.communityMedia(ctx, e.communityKeyword, "RECENT")
		case "membership":
			return e.api.communityMedia(ctx, e.communityKeyword, "MEMBERSHIP")
		default:
			return e.api.allCommunityMedia(ctx, e.communityKeyword)
		}
	})
}

type mediaCategoryExtractor struct {
	*base
	categoryID string
}

func (e *mediaCategoryExtractor) Items(ctx context.Context) ([]extractor.Record, error) {
	return e.queuePosts(ctx, Category+":media", func(context.Context) (*postIterator, error) {
		return e.api.mediaByCategory(e.categoryID)
	})
}
