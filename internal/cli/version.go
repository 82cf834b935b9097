package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via -ldflags by the release build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	versionShort bool
	versionJSON  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the pulse release, the commit it was built from and the Go toolchain.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printVersion(cmd.OutOrStdout(), currentBuild(), versionShort, versionJSON)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output in JSON format")
	versionCmd.MarkFlagsMutuallyExclusive("short", "json")
	rootCmd.Version = version
}

// buildInfo describes the running binary.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func currentBuild() buildInfo {
	return buildInfo{
		Version: formatVersion(version),
		Commit:  commit,
		Built:   date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

func printVersion(w io.Writer, b buildInfo, short, asJSON bool) error {
	switch {
	case short:
		_, err := fmt.Fprintln(w, version)
		return err
	case asJSON:
		return WriteJSONSuccess(w, b)
	}
	fmt.Fprintf(w, "pulse %s (%s, built %s)\n", b.Version, b.Commit, b.Built)
	fmt.Fprintf(w, "%s %s/%s\n", mutedStyle.Render(b.Go), b.OS, b.Arch)
	return nil
}

// formatVersion adds a "v" prefix to release versions.
func formatVersion(v string) string {
	if v == "" || v == "dev" || v[0] == 'v' {
		return v
	}
	return "v" + v
}

// SetVersionInfo records the ldflags values from main.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
	rootCmd.Version = formatVersion(v)
}

// GetVersion returns the raw version string.
func GetVersion() string {
	return version
}
