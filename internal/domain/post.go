package domain

// Post is a raw Weverse post record. Identifiers follow the server's
// composite "{kind}-{sequence}" form. A post owns at most one of:
// attachments, a moment, or gallery/video/embed media under Extension.
type Post struct {
	PostID      string      `json:"postId"`
	PostType    string      `json:"postType"`
	SectionType string      `json:"sectionType"`
	Body        string      `json:"body"`
	ShareURL    string      `json:"shareUrl"`
	PublishedAt int64       `json:"publishedAt"` // milliseconds
	Tags        []string    `json:"tags,omitempty"`
	Author      *Author     `json:"author,omitempty"`
	Community   *Community  `json:"community,omitempty"`
	Attachment  *Attachment `json:"attachment,omitempty"`
	Extension   *Extension  `json:"extension,omitempty"`
	Summary     *Summary    `json:"summary,omitempty"`

	// Visibility flags; pointers so absence can be told from false.
	HideFromArtist *bool `json:"hideFromArtist,omitempty"`
	MembershipOnly *bool `json:"membershipOnly,omitempty"`
}

// HasAttachments reports whether the post carries any photo or video
// attachments.
func (p *Post) HasAttachments() bool {
	return p.Attachment != nil && (len(p.Attachment.Photo) > 0 || len(p.Attachment.Video) > 0)
}

// HasExtension reports whether the post carries any extension content.
func (p *Post) HasExtension() bool {
	return p.Extension != nil && !p.Extension.Empty()
}

// Moment returns the post's moment content in either wire shape, or nil.
func (p *Post) Moment() *Moment {
	if p.Extension == nil {
		return nil
	}
	if p.Extension.Moment != nil {
		return p.Extension.Moment
	}
	return p.Extension.MomentW1
}

type Author struct {
	MemberID              string         `json:"memberId"`
	ProfileName           string         `json:"profileName"`
	ProfileType           string         `json:"profileType"`
	ArtistOfficialProfile *ArtistProfile `json:"artistOfficialProfile,omitempty"`
}

type ArtistProfile struct {
	OfficialName string `json:"officialName"`
}

type Community struct {
	CommunityID   int64  `json:"communityId"`
	CommunityName string `json:"communityName"`
	ArtistCode    string `json:"artistCode"`
}

// Attachment maps attachment ids to their photo or video payloads. The
// mapping order differs from display order; display order comes from id
// references embedded in the post body.
type Attachment struct {
	Photo map[string]Photo `json:"photo,omitempty"`
	Video map[string]Video `json:"video,omitempty"`
}

type Photo struct {
	PhotoID string `json:"photoId"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

type Video struct {
	VideoID      string      `json:"videoId"`
	InfraVideoID string      `json:"infraVideoId,omitempty"`
	UploadInfo   *UploadInfo `json:"uploadInfo,omitempty"`
}

// MasterID returns the VOD master id used by the play API.
func (v *Video) MasterID() string {
	if v.UploadInfo != nil && v.UploadInfo.VideoID != "" {
		return v.UploadInfo.VideoID
	}
	return v.InfraVideoID
}

type UploadInfo struct {
	VideoID string `json:"videoId"`
}

type Extension struct {
	Image     *ImageExtension `json:"image,omitempty"`
	Video     *Video          `json:"video,omitempty"`
	Youtube   *YoutubeEmbed   `json:"youtube,omitempty"`
	Moment    *Moment         `json:"moment,omitempty"`
	MomentW1  *Moment         `json:"momentW1,omitempty"`
	MediaInfo *MediaInfo      `json:"mediaInfo,omitempty"`
}

func (e *Extension) Empty() bool {
	return e.Image == nil && e.Video == nil && e.Youtube == nil &&
		e.Moment == nil && e.MomentW1 == nil && e.MediaInfo == nil
}

type ImageExtension struct {
	Photos []Photo `json:"photos"`
}

type YoutubeEmbed struct {
	YoutubeVideoID string `json:"youtubeVideoId"`
	VideoPath      string `json:"videoPath"`
}

// Moment is an ephemeral single-media post; exactly one of Photo or
// Video is set.
type Moment struct {
	Photo    *Photo `json:"photo,omitempty"`
	Video    *Video `json:"video,omitempty"`
	ExpireAt int64  `json:"expireAt"` // milliseconds
}

type MediaInfo struct {
	Title      string          `json:"title"`
	MediaType  string          `json:"mediaType"`
	Categories []MediaCategory `json:"categories,omitempty"`
}

type MediaCategory struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Summary carries the server's media counts for list responses that omit
// full attachment payloads.
type Summary struct {
	PhotoCount int `json:"photoCount"`
	VideoCount int `json:"videoCount"`
}

// Rendition is one encoded variant of a video.
type Rendition struct {
	Source         string         `json:"source"`
	EncodingOption EncodingOption `json:"encodingOption"`
}

type EncodingOption struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
