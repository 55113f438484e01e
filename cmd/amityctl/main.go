// amityctl is a CLI client for the Amity REST API, mainly used for local
// development and smoke testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "amityctl",
		Short: "CLI client for the Amity backend REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Amity service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Bearer token (defaults to the local dev token)")

	rootCmd.AddCommand(newBoardsCmd())
	rootCmd.AddCommand(newDraftsCmd())
	rootCmd.AddCommand(newMemoriesCmd())
	rootCmd.AddCommand(newMintTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
