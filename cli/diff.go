package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/etnz/hs-debianize/atoms"
	"github.com/etnz/hs-debianize/debdir"
	"github.com/etnz/hs-debianize/finalize"
	"github.com/etnz/hs-debianize/validate"
)

var (
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	changedColor = color.New(color.FgYellow)
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare the debian/ directory against a fresh finalization",
	Long: `diff finalizes the declaration in memory and compares the result
against what the debian/ directory currently declares. It exits non-zero
when the packaging is out of date, so it can gate a release pipeline.`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	pol, err := loadPolicy()
	if err != nil {
		return err
	}
	ov, err := loadOverrides()
	if err != nil {
		return err
	}

	var existing *atoms.Atoms
	existing, err = debdir.Read(debianDir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		existing = nil
	}

	fresh, err := loadDeclaration()
	if err != nil {
		return err
	}
	if err := finalize.Finalize(fresh, pol, ov, printer); err != nil {
		return err
	}

	report := validate.Compare(existing, fresh)
	if report.Empty() {
		fmt.Fprintln(os.Stdout, "packaging is up to date")
		return nil
	}
	for _, c := range report.Changes {
		switch {
		case c.Old == "":
			addedColor.Fprintf(os.Stdout, "+ %s\n", c)
		case c.New == "":
			removedColor.Fprintf(os.Stdout, "- %s\n", c)
		default:
			changedColor.Fprintf(os.Stdout, "~ %s\n", c)
		}
	}
	return fmt.Errorf("packaging is out of date: %d change(s) pending", len(report.Changes))
}
