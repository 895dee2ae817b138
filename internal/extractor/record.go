package extractor

// Metadata is the free-form metadata attached to emitted records.
type Metadata map[string]any

// Record is the sealed set of stream record kinds.
type Record interface {
	record()
}

// Directory opens a resolved post; emitted exactly once before its files.
type Directory struct {
	Metadata Metadata
}

// URL describes one downloadable file belonging to the current directory.
type URL struct {
	File     FileDescriptor
	Metadata Metadata
}

// Queue instructs the orchestrator to resolve a follow-up URL, optionally
// with a named extractor.
type Queue struct {
	URL       string
	Extractor string
}

func (Directory) record() {}
func (URL) record()       {}
func (Queue) record()     {}

// FileDescriptor is the normalized description of one media item.
// Immutable once emitted.
type FileDescriptor struct {
	ID        string
	URL       string
	Num       int
	Width     int
	Height    int
	Extension string

	// Indirect marks URLs that need a secondary resolver downstream
	// (third-party embeds) rather than pointing at a file.
	Indirect bool
}
