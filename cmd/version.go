package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/essaylens/internal/classify"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the essaylens version and the classifier bundle format it reads",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if v == "(devel)" {
			// go install records the module version.
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "essaylens", v)
		fmt.Fprintf(out, "classifier bundle format %s.x\n", classify.SupportedBundleMajor)
	},
}
