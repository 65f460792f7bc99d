package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
	"github.com/comalice/beepboop/internal/trace"
	"github.com/comalice/beepboop/view"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	HTML  bool
	Trace bool
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo [example]",
		Short: "Replay a scripted session against an example machine",
		Long:  "Mount an example machine, replay its scripted session and print the transition trace.\n\n" + examplesHelp(),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "counter"
			if len(args) > 0 {
				name = args[0]
			}
			return runDemo(cmd, opts, name)
		},
	}

	cmd.Flags().BoolVar(&opts.HTML, "html", false, "print the rendered view after every draw")
	cmd.Flags().BoolVar(&opts.Trace, "trace", true, "print committed transitions")

	return cmd
}

func runDemo(cmd *cobra.Command, opts *DemoOptions, name string) error {
	ex, err := lookup(name)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	pub := trace.NewChannelPublisher(1024)
	actorOpts := append(opts.cfg.ActorOptions(),
		beepboop.WithLogger(logger.Logger().Named(name)),
		beepboop.WithObserver(pub))
	a := beepboop.NewActor(ex.machine(), actorOpts...)
	defer a.Unmount()

	var root beepboop.Root = &view.Recorder{}
	if opts.HTML {
		root = beepboop.RootFunc(func(ctx context.Context, node any) error {
			if err := view.NewTemplRoot(out).Draw(ctx, node); err != nil {
				return err
			}
			_, err := fmt.Fprintln(out)
			return err
		})
	}

	fmt.Fprintf(out, "== %s (%s)\n", name, a.Machine().Fingerprint())
	if err := a.Mount(ctx, root, ex.props()); err != nil {
		return fmt.Errorf("mount %s: %w", name, err)
	}
	if err := ex.run(ctx, a, out); err != nil {
		return err
	}
	a.WaitInvocations()
	a.Unmount()

	_ = pub.Close()
	if opts.Trace {
		fmt.Fprintln(out, "== trace")
		for rec := range pub.Records() {
			fmt.Fprintln(out, trace.Format(rec))
		}
		if n := pub.Dropped(); n > 0 {
			fmt.Fprintf(out, "(%d records dropped)\n", n)
		}
	}
	return nil
}
