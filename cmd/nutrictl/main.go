// Command nutrictl inspects and maintains the nutri-hub state slot from the
// terminal, and runs the goal calculator without a server.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
)

var (
	storageMode string
	stateFile   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "nutrictl",
	Short:         "nutrictl manages the nutri-hub state from your terminal",
	Long:          "nutrictl computes calorie targets, shows or resets the stored app state and exports history without running the API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storageMode, "storage", "", "State slot backend (overrides STORAGE_MODE)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state-file", "", "State file path, implies --storage=file unless set")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log storage diagnostics to stderr")
}
