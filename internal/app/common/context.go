package common

import (
	"rustysweeper/internal/infra/config"
	"rustysweeper/internal/infra/logging"
)

type contextKey string

const ContextKeyApp contextKey = "appctx"

type GlobalOptions struct {
	ConfigPath string
	Verbose    int
	Quiet      bool
	JSON       bool
	NoOpLog    bool
}

type AppContext struct {
	Options GlobalOptions
	Config  *config.Config
	Logger  logging.Logger
}
