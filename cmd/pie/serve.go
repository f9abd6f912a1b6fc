package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vito/pie/pkg/rpc"
)

func serveCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve pie.evaluate and pie.check as JSON-RPC on stdio",
		Long: `Answer newline-delimited JSON-RPC 2.0 requests on stdin, one at a time,
until stdin closes. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(*cfg)
			if err != nil {
				return err
			}
			return rpc.Serve(cmd.Context(), &rpc.Service{Prelude: proj.Prelude}, os.Stdin, stdout{})
		},
	}
}

// stdout lets the server close its side without closing the process's
// stdout.
type stdout struct{}

func (stdout) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdout) Close() error                { return nil }
