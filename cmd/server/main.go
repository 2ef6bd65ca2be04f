package main // Entry point package

import (
	"os"

	"github.com/iliyamo/secure-ping/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
