package main

import (
	"os"

	"gpos_engine/cmd/gpos/commands"

	"github.com/coschain/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "GposEngine",
	Short: "GposEngine is the maintenance service computing decayed stake weights and dividend payouts",
}

func addCommands() {
	rootCmd.AddCommand(commands.StartCmd())
}

func main()  {
	addCommands()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
