package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/essaylens/internal/classify"
	"github.com/abhisek/essaylens/internal/config"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Inspect typing-style classifier bundles",
}

var bundleInspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Validate a forest bundle and print its summary",
	Long: `Validate a forest bundle and print its summary. Without a path, the
configured classifier.bundle_path (or the default data path) is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := session.cfg.Classifier.BundlePath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			p, err := config.DefaultBundlePath()
			if err != nil {
				return err
			}
			path = p
		}

		b, err := classify.NewForest(path).Bundle()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Path:       %s\n", path)
		fmt.Fprintf(out, "Format:     %s\n", b.FormatVersion)
		if b.Name != "" {
			fmt.Fprintf(out, "Name:       %s\n", b.Name)
		}
		if b.TrainedAt != "" {
			fmt.Fprintf(out, "Trained at: %s\n", b.TrainedAt)
		}
		fmt.Fprintf(out, "Classes:    %s\n", strings.Join(b.Classes, ", "))
		fmt.Fprintf(out, "Trees:      %d (%d nodes)\n", len(b.Trees), b.NodeCount())
		fmt.Fprintf(out, "Scaler:     %v\n", b.Scaler != nil)
		fmt.Fprintf(out, "Features:   %d\n", len(b.FeatureNames))
		return nil
	},
}

func init() {
	bundleCmd.AddCommand(bundleInspectCmd)
}
