// Kin - Graph-powered relationship navigator for genealogical data.
//
// Kin builds lineage partitions into a reciprocal relationship graph,
// enabling relationship path finding, kinship classification, and more.
package main

import (
	"fmt"
	"os"

	"github.com/hagborg/kin-go/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
