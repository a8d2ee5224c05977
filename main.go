package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/heathj/minibrowse/browser"
	"github.com/heathj/minibrowse/httpclient"
	"github.com/heathj/minibrowse/parser"
)

func main() {
	if err := cmdRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func cmdRoot() *cobra.Command {
	addFlags := func(cmd *cobra.Command) {
		cmd.PersistentFlags().Bool("debug", false, "log parse errors and mode switches")
		cmd.PersistentFlags().Bool("trace", false, "log every tokenizer transition")
		cmd.PersistentFlags().Bool("strict-tags", false, "fail on tags outside the supported element set")
		cmd.PersistentFlags().String("format", formatTree, "output format: tree, html or json")
	}
	var cmd = &cobra.Command{
		Use:   "minibrowse",
		Short: "fetch and parse HTML documents",
		Long:  `Fetch http pages and build their document trees`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logrus.SetOutput(os.Stderr)
			logrus.SetLevel(logrus.InfoLevel)
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if trace, _ := cmd.Flags().GetBool("trace"); trace {
				logrus.SetLevel(logrus.TraceLevel)
			}
			return nil
		},
	}
	addFlags(cmd)
	cmd.AddCommand(cmdFetch())
	cmd.AddCommand(cmdParse())
	cmd.AddCommand(cmdTokens())
	cmd.AddCommand(cmdVersion())
	return cmd
}

func parserConfig(cmd *cobra.Command) parser.Config {
	debug, _ := cmd.Flags().GetBool("debug")
	trace, _ := cmd.Flags().GetBool("trace")
	strictTags, _ := cmd.Flags().GetBool("strict-tags")
	return parser.Config{
		Debug:      debug || trace,
		Trace:      trace,
		StrictTags: strictTags,
		Logger:     logrus.StandardLogger(),
	}
}

func cmdFetch() *cobra.Command {
	strictStatus := false
	timeout := 10 * time.Second
	var cmd = &cobra.Command{
		Use:          "fetch <url>",
		Short:        "fetch an http page and print its tree",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			options := browser.Options{
				Client: httpclient.Config{DialTimeout: timeout},
				Parser: parserConfig(cmd),
				Logger: logrus.StandardLogger(),
			}
			if strictStatus {
				options.Client.StatusPolicy = httpclient.StatusStrict
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			page, err := browser.Load(ctx, args[0], options)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"status": page.Response.StatusCode,
				"reason": page.Response.Reason,
			}).Info(args[0])
			return render(cmd.OutOrStdout(), page.Window, format)
		},
	}
	cmd.Flags().BoolVar(&strictStatus, "strict-status", strictStatus, "fail on an unparsable status code instead of reading it as 404")
	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "bound on the whole fetch")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func cmdParse() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "parse [file]",
		Short:        "parse an HTML file, or stdin, and print its tree",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			html, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			w, err := parser.Parse(html, parserConfig(cmd))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), w, format)
		},
	}
	return cmd
}

func cmdTokens() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "tokens [file]",
		Short:        "print the token stream of an HTML file, or stdin",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			for _, t := range parser.Tokenize(html, parserConfig(cmd)) {
				fmt.Fprintln(cmd.OutOrStdout(), t.String())
			}
			return nil
		},
	}
	return cmd
}
