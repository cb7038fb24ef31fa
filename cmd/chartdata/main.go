package main

import (
	"os"

	"github.com/JonMunkholm/ChartDash/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
