package main

import (
	"os"

	"github.com/cleberrangel/dimensionamento-api/internal/cli"
)

func main() {
	if err := cli.Execute(os.Stdout); err != nil {
		os.Exit(1)
	}
}
