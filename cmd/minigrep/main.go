package main

import (
	"os"

	"github.com/XiaoConstantine/minigrep/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
