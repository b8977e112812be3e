package main

import (
	"os"

	"github.com/nativefx/nativegen/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	os.Exit(cmd.Execute())
}
