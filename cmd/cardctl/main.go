// cardctl is the local-first CLI client. It keeps a sqlite replica next to
// the user and coordinates with the card service when --api is set.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardkeep/cardkeep/cardservice"
)

var (
	apiFlag string
	dbFlag  string
	rootCmd = &cobra.Command{
		Use:   "cardctl",
		Short: "CLI client for the cardkeep card service",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "", "Card service base URL (empty = offline)")
	rootCmd.PersistentFlags().StringVarP(&dbFlag, "db", "d", defaultDBPath(), "Path to the local sqlite database")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cardkeep.db"
	}
	return home + "/.cardkeep/cardkeep.db"
}

// openEnv builds the service layer for one command invocation.
func openEnv() (*cardservice.Env, error) {
	return cardservice.NewEnv(dbFlag, apiFlag)
}
