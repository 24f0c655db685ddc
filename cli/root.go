// Package cli implements the hs-debianize command line interface.
package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var (
	// Global flags
	manifestPath  string
	debianDir     string
	overridesPath string
	policyPath    string
	quiet         bool
	setValues     []string
)

// rootCmd is the root command for hs-debianize.
var rootCmd = &cobra.Command{
	Use:     "hs-debianize",
	Version: "dev",
	Short:   "Generate Debian packaging from a Haskell package manifest",
	Long: `hs-debianize translates an upstream package manifest into a debian/
packaging directory: it derives package names, versions, dependencies
and policy defaults, keeps every value you supplied by hand, and writes
only the files whose content actually changed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// envConfig is the YAML shape of the defaults file named by the
// DEBIANIZE environment variable. Explicit flags win over it.
type envConfig struct {
	Manifest  string `yaml:"manifest"`
	Debian    string `yaml:"debian"`
	Overrides string `yaml:"overrides"`
	Policy    string `yaml:"policy"`
}

func applyEnvConfig(cmd *cobra.Command, args []string) error {
	path := os.Getenv("DEBIANIZE")
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading DEBIANIZE config: %w", err)
	}
	var cfg envConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return fmt.Errorf("parsing DEBIANIZE config %s: %w", path, err)
	}

	flags := rootCmd.PersistentFlags()
	if cfg.Manifest != "" && !flags.Changed("manifest") {
		manifestPath = cfg.Manifest
	}
	if cfg.Debian != "" && !flags.Changed("debian") {
		debianDir = cfg.Debian
	}
	if cfg.Overrides != "" && !flags.Changed("overrides") {
		overridesPath = cfg.Overrides
	}
	if cfg.Policy != "" && !flags.Changed("policy") {
		policyPath = cfg.Policy
	}
	return nil
}

func init() {
	rootCmd.PersistentPreRunE = applyEnvConfig
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&manifestPath, "manifest", "m", "package.yaml", "Path to the upstream package manifest")
	flags.StringVarP(&debianDir, "debian", "d", "debian", "Path to the debian/ packaging directory")
	flags.StringVarP(&overridesPath, "overrides", "o", "", "Path to the name override tables (YAML)")
	flags.StringVarP(&policyPath, "policy", "p", "", "Path to a policy amendment file (YAML)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress events")
	flags.StringArrayVar(&setValues, "set", nil, "Force a field value, e.g. --set maintainer='Jane <j@x.org>'")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the hs-debianize version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	})
}

// SetVersion overrides the build-time version string.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
