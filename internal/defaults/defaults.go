// Package defaults provides embedded copies of the default
// configuration and starter themes for the amparo init subcommand.
package defaults

import "embed"

//go:embed amparo.example.yaml
var ConfigYAML []byte

// ThemeFiles holds the starter theme guidance installed by init. Each
// file becomes one theme; the filename (sans extension) is the theme ID.
//
//go:embed themes/*.md
var ThemeFiles embed.FS
