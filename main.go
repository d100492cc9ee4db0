// Command archive-browser catalogs and serves web archive captures.
package main

import (
	"fmt"
	"os"

	"archive-browser/cli"

	"github.com/morikuni/failure/v2"
)

func main() {
	if err := cli.Run(); err != nil {
		userMessage := err.Error()
		if fmsg := failure.MessageOf(err); fmsg != "" {
			userMessage = fmsg.String()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage)
		os.Exit(1)
	}
}
