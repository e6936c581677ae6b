package cliconfig

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/bft-labs/inspectgw/pkg/log"
)

// NewLogger builds the process logger for the given level and format.
func NewLogger(level, format string, w io.Writer) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var zl zerolog.Logger
	switch format {
	case LogFormatJSON:
		zl = log.NewJSONLogger(w)
	case LogFormatConsole, "":
		zl = log.NewConsoleLogger(w)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return log.NewZerologAdapterWithLogger(zl.Level(lvl)), nil
}
