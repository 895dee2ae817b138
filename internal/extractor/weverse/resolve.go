package weverse

import (
	"context"

	"github.com/bradenhilton/gdl-extractors/internal/domain"
	"github.com/bradenhilton/gdl-extractors/internal/extractor"
)

// resolveAttachments orders a multi-attachment post by the attachment id
// references embedded in the post body; the attachment mapping's own
// order differs from display order.
func (b *base) resolveAttachments(ctx context.Context, post *domain.Post) ([]extractor.FileDescriptor, error) {
	order := extractor.ExtractAll(post.Body, `id="`, `"`)

	var files []extractor.FileDescriptor
	for _, attachmentID := range order {
		if photo, ok := post.Attachment.Photo[attachmentID]; ok {
			file := resolveImage(&photo)
			file.Num = len(files) + 1
			files = append(files, file)
			continue
		}
		if video, ok := post.Attachment.Video[attachmentID]; ok {
			file, err := b.resolveVideo(ctx, &video)
			if err != nil {
				return nil, err
			}
			if file == nil {
				continue
			}
			file.Num = len(files) + 1
			files = append(files, *file)
		}
	}
	return files, nil
}

// resolveMoment resolves an ephemeral single-media post: exactly one of
// image or video. Video resolution is skipped when videos are disabled.
func (b *base) resolveMoment(ctx context.Context, post *domain.Post) ([]extractor.FileDescriptor, error) {
	moment := post.Moment()
	if moment == nil {
		return nil, nil
	}

	var file *extractor.FileDescriptor
	if moment.Photo != nil {
		image := resolveImage(moment.Photo)
		file = &image
	} else {
		if !b.videos || moment.Video == nil {
			return nil, nil
		}
		resolved, err := b.resolveVideo(ctx, moment.Video)
		if err != nil || resolved == nil {
			return nil, err
		}
		file = resolved
	}

	file.Num = 1
	return []extractor.FileDescriptor{*file}, nil
}

// resolveMedia resolves gallery, video, and embed media posts. Embeds
// are emitted only when both embeds and videos are enabled, and their
// URLs are marked indirect for a downstream resolver.
func (b *base) resolveMedia(ctx context.Context, ext *domain.Extension) ([]extractor.FileDescriptor, error) {
	switch {
	case ext.Image != nil:
		files := make([]extractor.FileDescriptor, 0, len(ext.Image.Photos))
		for i, photo := range ext.Image.Photos {
			file := resolveImage(&photo)
			file.Num = i + 1
			files = append(files, file)
		}
		return files, nil

	case ext.Video != nil:
		if !b.videos {
			return nil, nil
		}
		file, err := b.resolveVideo(ctx, ext.Video)
		if err != nil || file == nil {
			return nil, err
		}
		file.Num = 1
		return []extractor.FileDescriptor{*file}, nil

	case ext.Youtube != nil:
		if !b.embeds || !b.videos {
			return nil, nil
		}
		return []extractor.FileDescriptor{{
			ID:       ext.Youtube.YoutubeVideoID,
			URL:      ext.Youtube.VideoPath,
			Num:      1,
			Indirect: true,
		}}, nil
	}
	return nil, nil
}

func resolveImage(photo *domain.Photo) extractor.FileDescriptor {
	return extractor.FileDescriptor{
		ID:        photo.PhotoID,
		URL:       photo.URL,
		Width:     photo.Width,
		Height:    photo.Height,
		Extension: extractor.ExtFromURL(photo.URL),
	}
}

// resolveVideo fetches the rendition list for a video and picks the best
// one. Media-kind videos resolve through the VOD play API; everything
// else through the post video endpoint. A nil result means the video
// yielded no renditions and should be skipped.
func (b *base) resolveVideo(ctx context.Context, video *domain.Video) (*extractor.FileDescriptor, error) {
	var (
		renditions []domain.Rendition
		err        error
	)
	if b.kind == kindMedia {
		renditions, err = b.api.mediaVideoList(ctx, video.VideoID, video.MasterID())
	} else {
		renditions, err = b.api.postVideoList(ctx, video.VideoID)
	}
	if err != nil {
		return nil, err
	}

	best, ok := bestRendition(renditions)
	if !ok {
		return nil, nil
	}
	return &extractor.FileDescriptor{
		ID:        video.VideoID,
		URL:       best.Source,
		Width:     best.EncodingOption.Width,
		Height:    best.EncodingOption.Height,
		Extension: extractor.ExtFromURL(best.Source),
	}, nil
}

// bestRendition selects the rendition maximizing pixel area; ties go to
// the first maximal rendition encountered.
func bestRendition(renditions []domain.Rendition) (domain.Rendition, bool) {
	if len(renditions) == 0 {
		return domain.Rendition{}, false
	}
	best := renditions[0]
	bestArea := best.EncodingOption.Width * best.EncodingOption.Height
	for _, rendition := range renditions[1:] {
		if area := rendition.EncodingOption.Width * rendition.EncodingOption.Height; area > bestArea {
			best = rendition
			bestArea = area
		}
	}
	return best, true
}
