package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgscan/internal/files/location"
)

var rootsFlags scanFlagValues

var rootsCmd = &cobra.Command{
	Use:   "roots <package>",
	Short: "Show the search roots that contain a package",
	Long: `Roots prints one line per search root containing the directory of
<package>: its kind (directory or archive) and its decoded location.
Nothing is walked.`,
	Example: `  pgscan roots com.example.sql --search-path ./resources:./lib/app.jar`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRoots,
}

func init() {
	rootCmd.AddCommand(rootsCmd)
	addScanFlags(rootsCmd, &rootsFlags)
}

func runRoots(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	s, _, err := env.scanner(rootsFlags)
	if err != nil {
		return err
	}

	roots, err := s.Roots(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, root := range roots {
		where := root.Path
		if root.Kind == location.KindArchive {
			where = root.ArchivePath + "!/" + root.EntryPath
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\n", root.Kind, where); err != nil {
			return err
		}
	}
	return nil
}
