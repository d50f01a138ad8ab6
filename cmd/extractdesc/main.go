// Command extractdesc concatenates the descriptions out of one or more
// saved result artifacts to stdout. Failed images are skipped with a note on
// stderr. With no arguments it reads ./results.json.
package main

import (
	"fmt"
	"os"

	"github.com/backmassage/lensbatch/internal/artifact"
)

func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{"./results.json"}
	}

	exit := 0
	for _, path := range paths {
		a, err := artifact.Read(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "extractdesc: %v\n", err)
			exit = 1
			continue
		}

		for _, r := range a.Results {
			fmt.Printf("## %s\n\n%s\n\n", r.Image, r.Description)
		}
		if len(a.Errors) > 0 {
			fmt.Fprintf(os.Stderr, "extractdesc: %s: skipped %d failed images\n",
				path, len(a.Errors))
		}
	}
	os.Exit(exit)
}
