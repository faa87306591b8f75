package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var propsGetFlags struct {
	def string
}

var propsCmd = &cobra.Command{
	Use:   "props",
	Short: "Inspect resolved properties",
	Long: `Properties come from the process environment, the env file (--env-file or
env_file in pgscan.yaml), the properties section of pgscan.yaml and
--property flags; later sources win.

Values of the form ${key} or ${key:default} are resolved recursively.`,
}

var propsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the resolved value of a property",
	Example: `  pgscan props get app.title
  pgscan props get '${APP_NAME:Summer}'
  pgscan props get db.port --default 5432`,
	Args: cobra.ExactArgs(1),
	RunE: runPropsGet,
}

func init() {
	rootCmd.AddCommand(propsCmd)
	propsCmd.AddCommand(propsGetCmd)
	propsGetCmd.Flags().StringVar(&propsGetFlags.def, "default", "",
		"Value to print when the property is undefined")
}

func runPropsGet(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	var value string
	if cmd.Flags().Changed("default") {
		value, err = env.props.GetOr(args[0], propsGetFlags.def)
	} else {
		value, err = env.props.Required(args[0])
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
	return err
}
