package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = ` _ __   __ _ ___  ___ __ _ _ __  
| '_ \ / _' / __|/ __/ _' | '_ \ 
| |_) | (_| \__ \ (_| (_| | | | |
| .__/ \__, |___/\___\__,_|_| |_|
|_|    |___/                      `

var rootCmd = &cobra.Command{
	Use:   "pgscan",
	Short: "Classpath-style resource scanner",
	Long: asciiLogo + `

pgscan finds every resource below a dotted package name ("com.example.sql")
across an ordered search path of directories and zip/jar archives, and can
record what it found in PostgreSQL.

The search path comes from --search-path, the search_path of pgscan.yaml,
or the PGSCAN_PATH environment variable, in that order.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or properties
  11 - Database connection failed
  20 - Search path could not be queried
  21 - A root location could not be decoded
  22 - An archive root could not be mounted
  23 - A root could not be traversed
  24 - SQL statement failed`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return rootCmd.Execute()
}

// globalFlagValues holds the persistent flags shared by every command.
type globalFlagValues struct {
	verbose    bool
	logJSON    bool
	configPath string
	envFile    string
	properties []string
}

var globalFlags globalFlagValues

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.verbose, "verbose", "v", false,
		"Enable verbose output for all commands")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.logJSON, "log-json", false,
		"Write log messages to stderr as JSON lines")
	rootCmd.PersistentFlags().StringVar(&globalFlags.configPath, "config", "",
		"Path to the project file (default: ./"+configFileHint+" when present)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.envFile, "env-file", "",
		"Load properties from a .env file")
	rootCmd.PersistentFlags().StringArrayVarP(&globalFlags.properties, "property", "P", nil,
		"Set a property (key=value); may be repeated")
}
