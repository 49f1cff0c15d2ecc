package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "infraai",
	Short: "Alert-driven remediation and infrastructure chat backend",
	Long: `infraai receives Alertmanager webhooks, matches them against remediation
policies and executes the resulting actions through a Redis-backed worker.
The same process serves an infrastructure chat API and a structured command API.

Commands:
  serve   HTTP API only (alerts are enqueued, not executed)
  worker  remediation worker only
  all     HTTP API and worker in one process`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		newRunCmd("serve", "Run the HTTP API server", true, false),
		newRunCmd("worker", "Run the remediation worker", false, true),
		newRunCmd("all", "Run the HTTP API server and the remediation worker", true, true),
	)
}

func newRunCmd(use, short string, withServer, withWorker bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), withServer, withWorker)
		},
	}
}

func main() {
	// .env 가 없으면 환경변수만 사용
	_ = godotenv.Load()

	// 서브커맨드 없이 실행하면 all
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"all"})
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
