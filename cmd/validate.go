// =============================================================================
// Invoice Combination Finder - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   finder validate
//
// Loads the main configuration and every profile and reports problems
// without touching any invoice file.
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration files without processing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		// The root command already loaded and validated the main config.
		fmt.Fprintln(out, "Main configuration: OK")

		profiles, err := config.LoadProfileConfigs(mainConfig.ProfilesDir)
		if err != nil {
			fmt.Fprintf(out, "Profiles: FAILED\n  %v\n", err)
			return fmt.Errorf("profile configuration is invalid")
		}

		codes := make([]string, 0, len(profiles))
		for code := range profiles {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		fmt.Fprintf(out, "Profiles: %d loaded from %s\n", len(profiles), mainConfig.ProfilesDir)
		for _, code := range codes {
			p := profiles[code]
			fmt.Fprintf(out, "  %s (%s) target %s, export %s, from %s\n",
				code, p.ProfileName, p.Target, p.ExportFormat, p.Source())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
