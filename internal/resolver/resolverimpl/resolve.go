package resolverimpl

import (
	"context"
	"fmt"

	"github.com/bradenhilton/gdl-extractors/internal/extractor"
	apperrors "github.com/bradenhilton/gdl-extractors/pkg/errors"
)

// maxQueueDepth bounds queue-record recursion. Two hops covers every
// supported chain (feed -> post, media tab -> media post).
const maxQueueDepth = 2

func (r *ResolverImpl) Resolve(ctx context.Context, rawURL string) error {
	return r.resolve(ctx, rawURL, "", 0)
}

func (r *ResolverImpl) ResolveAll(ctx context.Context, urls []string) {
	for _, u := range urls {
		if ctx.Err() != nil {
			return
		}
		if err := r.Resolve(ctx, u); err != nil {
			r.Logger.Error("Failed to resolve url", "url", u, "error", err)
		}
	}
}

func (r *ResolverImpl) resolve(ctx context.Context, rawURL, queuedBy string, depth int) error {
	if depth > maxQueueDepth {
		r.Logger.Warn("Queue depth limit reached, skipping", "url", rawURL)
		return nil
	}

	ext, name := r.Registry.Find(rawURL)
	if ext == nil {
		return apperrors.Wrap(apperrors.ErrUnsupported, fmt.Sprintf("no extractor matches %q", rawURL))
	}
	if queuedBy != "" && queuedBy != name {
		r.Logger.Warn("Queued url dispatched to a different extractor",
			"url", rawURL,
			"queued_by", queuedBy,
			"matched", name)
	}

	r.Logger.Info("Resolving url", "url", rawURL, "extractor", name)

	records, err := ext.Items(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		switch rec := rec.(type) {
		case extractor.Directory:
			if err := r.Sink.Directory(ctx, rec.Metadata); err != nil {
				return err
			}
		case extractor.URL:
			if err := r.deliver(ctx, rec); err != nil {
				return err
			}
		case extractor.Queue:
			// A failed follow-up must not abort its siblings.
			if err := r.resolve(ctx, rec.URL, rec.Extractor, depth+1); err != nil {
				r.Logger.Error("Failed to resolve queued url", "url", rec.URL, "error", err)
			}
		}
	}

	return nil
}

func (r *ResolverImpl) deliver(ctx context.Context, rec extractor.URL) error {
	key := archiveKey(rec)
	if key != "" {
		seen, err := r.ArchiveRepo.Exists(ctx, key)
		if err != nil {
			r.Logger.Warn("Archive lookup failed, sending anyway", "key", key, "error", err)
		} else if seen {
			r.Logger.Debug("Skipping archived file", "key", key)
			return nil
		}
	}

	if err := r.Sink.File(ctx, rec.File, rec.Metadata); err != nil {
		return err
	}

	if key != "" {
		if err := r.ArchiveRepo.Create(ctx, key); err != nil {
			r.Logger.Warn("Failed to record archive entry", "key", key, "error", err)
		}
	}
	return nil
}

func archiveKey(rec extractor.URL) string {
	postID, _ := rec.Metadata["post_id"].(string)
	if postID == "" || rec.File.ID == "" {
		return ""
	}
	return fmt.Sprintf("weverse_%s_%s", postID, rec.File.ID)
}
