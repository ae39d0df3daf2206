// Command apiprobe sends one request through the response classifier and
// reports the outcome.
//
//	apiprobe get /pet/1 --base-url https://petstore.example.com/v2
//	apiprobe get /pet/0 --expect-status 404 --format xml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/apiclient/version"
)

func newRootCmd() *cobra.Command {
	var flags probeFlags

	root := &cobra.Command{
		Use:           "apiprobe",
		Short:         "Classify one HTTP API response",
		Long:          "apiprobe executes a single request, classifies the response by status and\nbody shape, and exits non-zero when the outcome is not the expected one.",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	flags.register(root.PersistentFlags())

	root.AddCommand(
		newMethodCmd("get", "GET", &flags),
		newMethodCmd("delete", "DELETE", &flags),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
