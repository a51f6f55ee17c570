// Package main is the single-binary entrypoint for Grit.
package main

import "github.com/gritforge/grit/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
