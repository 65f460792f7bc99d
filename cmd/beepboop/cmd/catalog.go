package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/examples/counter"
	"github.com/comalice/beepboop/examples/fetch"
	"github.com/comalice/beepboop/examples/profile"
	"github.com/comalice/beepboop/internal/logger"
)

type example struct {
	summary string
	machine func() *beepboop.Machine
	props   func() any
	run     func(context.Context, *beepboop.Actor, io.Writer) error
}

var catalog = map[string]example{
	"counter": {
		summary: "one state, inc/dec/reset",
		machine: counter.Machine,
		props:   counter.DefaultProps,
		run:     counter.Run,
	},
	"fetch": {
		summary: "asynchronous load with retry and cancel",
		machine: func() *beepboop.Machine { return fetch.Machine(fetch.Echo(100 * time.Millisecond)) },
		props:   fetch.DefaultProps,
		run:     fetch.Run,
	},
	"profile": {
		summary: "CUE-validated props and nested model edits",
		machine: func() *beepboop.Machine {
			return profile.Machine(func(name string) { logger.Logger().Infow("renamed", "name", name) })
		},
		props: profile.DefaultProps,
		run:   profile.Run,
	},
}

func exampleNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookup(name string) (example, error) {
	ex, ok := catalog[name]
	if !ok {
		return example{}, fmt.Errorf("unknown example %q (available: %s)", name, strings.Join(exampleNames(), ", "))
	}
	return ex, nil
}

func examplesHelp() string {
	var b strings.Builder
	b.WriteString("Examples:\n")
	for _, name := range exampleNames() {
		fmt.Fprintf(&b, "  %-8s %s\n", name, catalog[name].summary)
	}
	return b.String()
}
