package resolverimpl

import (
	"github.com/bradenhilton/gdl-extractors/internal/extractor"
	"github.com/bradenhilton/gdl-extractors/internal/repositories/archive"
	"github.com/bradenhilton/gdl-extractors/internal/resolver"
	"github.com/bradenhilton/gdl-extractors/internal/sink"
	"github.com/bradenhilton/gdl-extractors/pkg/config"
	"github.com/bradenhilton/gdl-extractors/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Registry    *extractor.Registry
	Sink        sink.Client
	ArchiveRepo archive.Repository
	Logger      logger.Logger
	Config      *config.Config
}

type ResolverImpl struct {
	Registry    *extractor.Registry
	Sink        sink.Client
	ArchiveRepo archive.Repository
	Logger      logger.Logger
	Config      *config.Config
}

func New(opts Opts) *ResolverImpl {
	return &ResolverImpl{
		Registry:    opts.Registry,
		Sink:        opts.Sink,
		ArchiveRepo: opts.ArchiveRepo,
		Logger:      opts.Logger,
		Config:      opts.Config,
	}
}

var _ resolver.Client = (*ResolverImpl)(nil)
