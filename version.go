package main

import (
	"fmt"

	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"
)

const (
	versionMajor = 0
	versionMinor = 1
	versionPatch = 0
)

// Version of the minibrowse binary. Build carries the commit the go tool
// stamped into it, if any.
func Version() semver.Version {
	return semver.Version{
		Major: versionMajor,
		Minor: versionMinor,
		Patch: versionPatch,
		Build: semver.Commit(),
	}
}

func versionText(showBuildInfo bool) string {
	v := Version()
	if showBuildInfo {
		return fmt.Sprintf("minibrowse %s", v.String())
	}
	return fmt.Sprint(v.Core())
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), versionText(showBuildInfo))
			return err
		},
	}
	cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
	return cmd
}
