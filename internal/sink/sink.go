package sink

import (
	"context"

	"github.com/bradenhilton/gdl-extractors/internal/extractor"
)

// Client consumes the normalized output stream: one Directory per
// resolved post, then one File per descriptor.
type Client interface {
	Directory(ctx context.Context, meta extractor.Metadata) error
	File(ctx context.Context, file extractor.FileDescriptor, meta extractor.Metadata) error
}
