package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/csvx/cmd"
	"github.com/oakwood-commons/csvx/pkg/logger"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "csvx:", err)
	}

	logger.Sync()
	os.Exit(cmd.ExitCode(err))
}
