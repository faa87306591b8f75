package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pgscan/internal/config"
	"github.com/vvka-141/pgscan/internal/db"
	"github.com/vvka-141/pgscan/internal/index"
	"github.com/vvka-141/pgscan/pkg/pgscan"
)

type indexCmdFlagValues struct {
	scanFlagValues
	suffixes   []string
	connection string
	replace    bool
	timeout    time.Duration
}

var indexFlags = indexCmdFlagValues{timeout: time.Minute}

var indexCmd = &cobra.Command{
	Use:   "index <package>",
	Short: "Record the resources of a package in PostgreSQL",
	Long: `Index scans <package> and upserts every resource into the pgscan_resource
table (created when missing), keyed by package and location.

With --replace, entries of the package that were not found by this scan are
removed in the same transaction.

The connection comes from --connection, the connection section of
pgscan.yaml, or the DATABASE_URL property, in that order.`,
	Example: `  pgscan index com.example.sql -c postgres://localhost/catalog
  pgscan index app.data --replace --suffix .sql`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	addScanFlags(indexCmd, &indexFlags.scanFlagValues)
	indexCmd.Flags().StringSliceVar(&indexFlags.suffixes, "suffix", nil,
		"Only index resources whose name ends with this suffix; may be repeated")
	indexCmd.Flags().StringVarP(&indexFlags.connection, "connection", "c", "",
		"PostgreSQL connection string (URL or key=value)")
	indexCmd.Flags().BoolVar(&indexFlags.replace, "replace", false,
		"Remove stored entries of the package that this scan did not find")
	indexCmd.Flags().DurationVar(&indexFlags.timeout, "timeout", time.Minute,
		"Maximum time for connecting and writing")
}

// connString picks the connection: the flag, then the project file, then
// the DATABASE_URL property.
func (e *environment) connString(flag string) (string, error) {
	if flag != "" {
		return e.props.Resolve(flag)
	}
	if e.cfg.Connection != (config.ConnectionConfig{}) {
		return e.cfg.Connection.ConnString(e.props)
	}
	url, found, err := e.props.Get("DATABASE_URL")
	if err != nil {
		return "", err
	}
	if !found || url == "" {
		return "", fmt.Errorf("%w: no database connection (use --connection, pgscan.yaml or DATABASE_URL)", pgscan.ErrInvalidConfig)
	}
	return url, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	pkg := args[0]

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	connString, err := env.connString(indexFlags.connection)
	if err != nil {
		return err
	}

	resources, err := env.collectResources(indexFlags.scanFlagValues, pkg, indexFlags.suffixes)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), indexFlags.timeout)
	defer cancel()

	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := index.NewStore(db.NewTemplate(pool))
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	var removed int64
	if indexFlags.replace {
		removed, err = store.Replace(ctx, pkg, resources)
	} else {
		_, err = store.Upsert(ctx, pkg, resources)
	}
	if err != nil {
		return err
	}

	total, err := store.Count(ctx, pkg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if indexFlags.replace {
		fmt.Fprintf(out, "indexed %d resource(s) for %s (%d replaced, %d stored)\n", len(resources), pkg, removed, total)
	} else {
		fmt.Fprintf(out, "indexed %d resource(s) for %s (%d stored)\n", len(resources), pkg, total)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
