package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/yigit/studyhub/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}
