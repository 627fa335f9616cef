package main

import (
	"os"

	"github.com/reglet-dev/rule-verifier/cmd/rule-verifier/commands"
)

func main() {
	os.Exit(commands.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
