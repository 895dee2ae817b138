package repositories

import (
	"github.com/Masterminds/squirrel"
)

// SqBuilder is the shared statement builder for postgres placeholders.
var SqBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
