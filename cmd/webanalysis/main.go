// Package main is the webanalysis executable.
//
// Each subcommand runs one pipeline synchronously: fetch, shape into a table,
// aggregate and hand the result to the console and HTML chart presenters.
//
//	webanalysis tickets status --config webanalysis.yaml
//	webanalysis listings --url https://example.com/huren/
//	webanalysis sitemap --base-url https://example.com/
package main

import "github.com/JakeFAU/webanalysis/cmd"

func main() {
	cmd.Execute()
}
