package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tactical-os/tos/config"
	"github.com/tactical-os/tos/logging"
)

// CommandOptions holds the persistent flags shared by every tos command.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
	Color      string
}

// NewStandardCommand creates a command carrying the standard tos flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to tos.yml config file")
	cmd.PersistentFlags().String("color", "auto", "Colour output: auto, always, never")

	SetStyledHelp(cmd)
	return cmd
}

// GetLogger returns the component logger, adjusted for --verbose and --json.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	entry := logging.NewLogger(component)

	opts := GetOptions(cmd)
	if opts.Verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	if opts.JSONOutput {
		entry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return entry
}

// GetOptions extracts the standard flags from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	color, _ := cmd.Flags().GetString("color")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
		Color:      color,
	}
}

// LoadConfig loads --config when set, otherwise the nearest tos.yml.
// The returned path is empty when the defaults are in use.
func LoadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	opts := GetOptions(cmd)
	if opts.ConfigFile != "" {
		cfg, err := config.Load(opts.ConfigFile)
		return cfg, opts.ConfigFile, err
	}

	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, "", err
	}
	file, _ := InitConfig("")
	return cfg, file, nil
}

// InitConfig resolves the configuration file path. An empty result with a
// nil error means no file was found.
func InitConfig(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	found, err := config.FindConfigFile(cwd)
	if err != nil {
		return "", nil
	}
	return found, nil
}
