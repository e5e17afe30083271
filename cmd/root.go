package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Shelf - a splay-tree library catalog",
	Long: `Shelf keeps a library's books in self-adjusting search trees indexed by
author and ISBN, so recently used books stay cheap to reach. Books can be
borrowed and returned over gRPC, HTTP or an interactive menu.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .ini)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func Execute() error {
	return rootCmd.Execute()
}
