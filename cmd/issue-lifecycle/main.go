package main

import (
	"fmt"
	"issue-lifecycle/cmd/issue-lifecycle/commands"
	"os"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
