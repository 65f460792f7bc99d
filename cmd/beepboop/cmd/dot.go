package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/comalice/beepboop/internal/visualize"
)

// DotOptions holds flags for the dot command.
type DotOptions struct {
	*RootOptions
	Format      string
	State       string
	Output      string
	Fingerprint bool
}

// NewDotCommand creates the dot command.
func NewDotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dot <example>",
		Short: "Export a compiled example machine",
		Long:  "Export a compiled example machine as Graphviz DOT, JSON or YAML.\n\n" + examplesHelp(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDot(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "dot", "output format (dot|json|yaml)")
	cmd.Flags().StringVarP(&opts.State, "state", "s", "", "state to highlight (dot only)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.Fingerprint, "fingerprint", false, "print only the machine fingerprint")

	return cmd
}

func runDot(cmd *cobra.Command, opts *DotOptions, name string) error {
	ex, err := lookup(name)
	if err != nil {
		return err
	}
	m := ex.machine()

	if opts.Fingerprint {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), m.Fingerprint())
		return err
	}

	data, err := visualize.Export(opts.Format, m.Shape(), opts.State)
	if err != nil {
		return err
	}
	if opts.Output != "" {
		return os.WriteFile(opts.Output, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
