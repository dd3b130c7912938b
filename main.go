// The main package for the webanalysis executable.
package main

import (
	"github.com/JakeFAU/webanalysis/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
