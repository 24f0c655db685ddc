package main

import "github.com/etnz/hs-debianize/cli"

// version is set at build time via -ldflags "-X main.version=...".
var version string

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
