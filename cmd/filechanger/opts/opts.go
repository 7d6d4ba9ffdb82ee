package opts

import (
	"io"

	"github.com/walteh/filechanger/pkg/config"
	"github.com/walteh/filechanger/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool

	// Set once flags are parsed
	Config *config.Config
	Logger *log.Logger

	In  io.Reader
	Out io.Writer
}
