// Snapdiff repackages a filesystem snapshot diff stream into replay artifacts.
package main

import "snapdiff/cmd/snapdiff/internal/cli"

func main() {
	cli.Execute()
}
