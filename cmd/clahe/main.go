package main

import (
	"os"

	"github.com/Fepozopo/clahe/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
