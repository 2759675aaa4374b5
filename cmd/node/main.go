// go-bulletin runs a node of the replicated bulletin board.
package main

import (
	"fmt"
	"os"

	"github.com/tradenet/go-bulletin/cmd"
	"github.com/tradenet/go-bulletin/node"
)

var (
	version string
	commit  string
	branch  string
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Branch = branch
	if err := node.GetCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
