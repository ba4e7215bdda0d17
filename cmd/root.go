package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/psyconnect/psyconnect_backend/cmd/http"
	systemcmd "github.com/psyconnect/psyconnect_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "psyconnect",
	Short: "PsyConnect appointment scheduling backend for university counselling services.",
	Long: `PsyConnect is the scheduling backend that connects students with
university psychologists: availability calendars, appointment booking and
confirmation, and the counselling case records that grow out of them.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
