//go:build !sqlite
// +build !sqlite

package seenstore

import (
	"errors"

	"github.com/rs/zerolog"
)

func openSQLite(cfg Config, log zerolog.Logger) (Store, error) {
	_ = cfg
	_ = log
	return nil, errors.New("sqlite seen-store not built: build with -tags sqlite")
}
