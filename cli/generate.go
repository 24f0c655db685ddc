package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/debdir"
	"github.com/etnz/hs-debianize/finalize"
	"github.com/etnz/hs-debianize/validate"
)

var (
	dryRun  bool
	signDsc bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Finalize the declaration and write the debian/ directory",
	Long: `generate reads the manifest and any existing debian/ directory, fills
every missing field from the policy and override tables, validates the
result and writes the packaging files. Files whose content is already
current are left untouched.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Finalize and validate without touching the debian/ directory")
	generateCmd.Flags().BoolVar(&signDsc, "sign-dsc", false, "Also render and clearsign a .dsc stanza (key from DEB_SIGNING_KEY)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	pol, err := loadPolicy()
	if err != nil {
		return err
	}
	ov, err := loadOverrides()
	if err != nil {
		return err
	}
	a, err := loadDeclaration()
	if err != nil {
		return err
	}

	if err := finalize.Finalize(a, pol, ov, printer); err != nil {
		return err
	}
	if vs := validate.Validate(a, ov); len(vs) > 0 {
		for _, v := range vs {
			fmt.Fprintln(os.Stderr, v)
		}
		return fmt.Errorf("declaration has %d validation error(s)", len(vs))
	}

	dir := debianDir
	if dryRun {
		tmp, err := os.MkdirTemp("", "hs-debianize-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		dir = filepath.Join(tmp, "debian")
	}

	ops, err := debdir.Write(dir, a, pol, printer)
	if err != nil {
		return err
	}

	var created, updated, unchanged int
	for _, op := range ops {
		switch {
		case op.OldDigest == "":
			created++
		case op.OldDigest != op.NewDigest:
			updated++
		default:
			unchanged++
		}
	}
	fmt.Fprintf(os.Stdout, "%s (%s): %d file(s) created, %d updated, %d unchanged\n",
		a.SourceName.Get(), a.SourceVersion.Get(), created, updated, unchanged)

	if signDsc {
		return writeSignedDSC(a, dir)
	}
	return nil
}

// writeSignedDSC renders the .dsc stanza, clearsigns it with the key
// named by DEB_SIGNING_KEY and writes it next to the debian/ directory.
func writeSignedDSC(a *atoms.Atoms, dir string) error {
	keyPath := os.Getenv("DEB_SIGNING_KEY")
	if keyPath == "" {
		return fmt.Errorf("--sign-dsc requires DEB_SIGNING_KEY to name an armored private key file")
	}
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("reading signing key: %w", err)
	}

	signed, err := debdir.SignDSC(debdir.RenderDSC(a), string(key))
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s.dsc", a.SourceName.Get(), a.SourceVersion.Get())
	path := filepath.Join(filepath.Dir(dir), name)
	if err := os.WriteFile(path, signed, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	fmt.Fprintf(os.Stdout, "signed source stanza written to %s\n", path)
	return nil
}
