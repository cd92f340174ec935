// The main package for the ankisign executable.
package main

import (
	"ankisign/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
