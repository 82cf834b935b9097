package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/config"
	"github.com/tinyland-inc/prompt-pulse-tui/internal/errors"
	"gopkg.in/yaml.v3"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration pulse will use",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults are merged in and values are
normalized, as YAML (or a JSON envelope with --json).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShow(cmd.OutOrStdout(), cfgFile, configJSON)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		if path == "" {
			cmd.Printf("%s (not created yet, using defaults)\n", config.DefaultConfigPath())
			return nil
		}
		cmd.Println(path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd)
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "output in JSON format")
}

// configView is the document printed by config show.
type configView struct {
	Source string                 `json:"source"`
	Config map[string]interface{} `json:"config"`
}

func configShow(w io.Writer, path string, asJSON bool) error {
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		if asJSON {
			if werr := WriteJSONFromError(w, err); werr != nil {
				return werr
			}
			return errors.NewExitError(1)
		}
		return err
	}

	source := found
	if source == "" {
		source = "defaults"
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to render config",
			"This shouldn't happen - please report this bug")
	}

	if !asJSON {
		fmt.Fprintf(w, "# source: %s\n", source)
		_, err = w.Write(data)
		return err
	}

	// Round-trip through YAML so JSON keys and durations match the file format.
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to render config",
			"This shouldn't happen - please report this bug")
	}
	return WriteJSONSuccess(w, configView{Source: source, Config: doc})
}
