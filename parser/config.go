package parser

import (
	"github.com/sirupsen/logrus"
)

// Config tunes a parse. The zero value is the lenient, quiet default.
type Config struct {
	// Debug logs parse errors and insertion mode switches.
	Debug bool
	// Trace logs every tokenizer state transition.
	Trace bool
	// StrictTags makes a start tag outside the known element set fail the
	// parse with dom.ErrUnsupportedTag instead of being skipped.
	StrictTags bool
	// Logger receives the debug and trace entries. Defaults to the logrus
	// standard logger.
	Logger *logrus.Logger
}

func (c Config) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}
