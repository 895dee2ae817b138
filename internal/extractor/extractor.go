package extractor

import "context"

// Extractor resolves one matched URL into an ordered record stream.
// Feed-type extractors emit Queue records; content extractors emit one
// Directory record followed by one URL record per file.
type Extractor interface {
	Items(ctx context.Context) ([]Record, error)
}

// Factory builds an extractor instance from a matched URL. match holds
// the pattern's submatches, match[0] being the full match.
type Factory func(url string, match []string) Extractor
