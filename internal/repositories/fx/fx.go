package fx

import (
	"github.com/bradenhilton/gdl-extractors/internal/repositories/archive"
	"github.com/bradenhilton/gdl-extractors/internal/repositories/credential"
	"go.uber.org/fx"
)

var Module = fx.Options(
	credential.Module,
	archive.Module,
)
