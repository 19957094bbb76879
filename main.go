package main

import (
	"errors"
	"fmt"
	"os"

	"rustysweeper/cmd"
	"rustysweeper/internal/app/common"
	"rustysweeper/internal/infra/config"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var coded *common.ExitError
	if errors.As(err, &coded) {
		return coded.Code
	}
	switch {
	case errors.Is(err, config.ErrInvalid):
		return common.ExitConfig
	case errors.Is(err, os.ErrPermission):
		return common.ExitPermission
	case errors.Is(err, common.ErrInterrupted):
		return common.ExitInterrupted
	}
	return common.ExitFailure
}
