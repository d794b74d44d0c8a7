package main

import (
	"context"
	"os"

	"github.com/fatih/color"

	"github.com/open-cli-collective/creole-cli/internal/cmd/root"
)

func main() {
	cmd := root.NewCmdRoot()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		_, _ = color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
