package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wormlife",
		Short: "wormlife - a virtual worm that lives, dies and leaves heirs",
		Long: `wormlife runs the worm lifecycle simulation and keeps its save files
safe across crashes, with a single-generation backup.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "path to the TOML config file")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(lineageCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("WORMLIFE_CONFIG"); p != "" {
		return p
	}
	return "config/wormlife.toml"
}
