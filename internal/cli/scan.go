package cli

import (
	"github.com/spf13/cobra"
)

type scanCmdFlagValues struct {
	scanFlagValues
	suffixes []string
	format   string
}

var scanFlags = scanCmdFlagValues{format: formatText}

var scanCmd = &cobra.Command{
	Use:   "scan <package>",
	Short: "List the resources of a package",
	Long: `Scan lists every regular file below the directory of <package> in each
search root, in search path order. Names are relative to the package
directory and always use forward slashes.

Directory resources are located by "file:" plus their absolute path; archive
resources by their path inside the archive.`,
	Example: `  pgscan scan com.example.sql --search-path ./resources:./lib/app.jar
  pgscan scan app.data --suffix .sql --suffix .yaml --format json
  PGSCAN_PATH=./build/libs/app.jar pgscan scan migrations --skip-failed`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd, &scanFlags.scanFlagValues)
	scanCmd.Flags().StringSliceVar(&scanFlags.suffixes, "suffix", nil,
		"Only list resources whose name ends with this suffix; may be repeated")
	scanCmd.Flags().StringVar(&scanFlags.format, "format", formatText,
		"Output format: text or json")
}

// addScanFlags registers the flags every scanning command shares.
func addScanFlags(cmd *cobra.Command, flags *scanFlagValues) {
	cmd.Flags().StringVarP(&flags.searchPath, "search-path", "s", "",
		"Search path as an OS path list of directories and zip/jar archives")
	cmd.Flags().BoolVar(&flags.skipFailed, "skip-failed", false,
		"Skip search roots that cannot be opened or walked instead of failing")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := validateFormat(scanFlags.format); err != nil {
		return err
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	resources, err := env.collectResources(scanFlags.scanFlagValues, args[0], scanFlags.suffixes)
	if err != nil {
		return err
	}
	return printResources(cmd.OutOrStdout(), args[0], resources, scanFlags.format)
}
