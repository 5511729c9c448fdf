package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	// Let the tickets command add the login guard on top of the root setup.
	cobra.EnableTraverseRunHooks = true
}

func Execute() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out, errOut io.Writer) error {
	root, a := newRootCmd(in, out, errOut)
	root.SetArgs(args)
	defer a.close()
	return root.Execute()
}

func newRootCmd(in io.Reader, out, errOut io.Writer) (*cobra.Command, *app) {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "helpdesk",
		Short: "Helpdesk is a command line client for the AI ticket desk",
		Long: `A command line client for the AI assisted support ticket desk.
Sign in with "helpdesk login"; the session is kept between runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printBanner()
			return cmd.Help()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.output, "output", "o", formatTable, "output format: table, json or yaml")
	flags.StringVar(&a.baseURL, "base-url", "", "API base URL, overrides HELPDESK_BASE_URL")
	flags.BoolVar(&a.debug, "debug", false, "log requests and session changes")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newTicketsCmd(a),
	)
	return root, a
}
