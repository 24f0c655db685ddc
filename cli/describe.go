package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/etnz/hs-debianize/finalize"
)

var titleColor = color.New(color.FgCyan, color.Bold)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show the finalized declaration without writing anything",
	Args:  cobra.NoArgs,
	RunE:  runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
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

	out := os.Stdout
	titleColor.Fprintln(out, "Source package")
	fmt.Fprintf(out, "  %-18s %s\n", "Source:", a.SourceName.Get())
	fmt.Fprintf(out, "  %-18s %s\n", "Version:", a.SourceVersion.Get())
	fmt.Fprintf(out, "  %-18s %s\n", "Maintainer:", a.Maintainer.Get())
	fmt.Fprintf(out, "  %-18s %s / %s\n", "Section/Priority:", a.Section.Get(), a.Priority.Get())
	fmt.Fprintf(out, "  %-18s %s\n", "Standards:", a.StandardsVersion.Get())
	fmt.Fprintf(out, "  %-18s %d\n", "Compat:", a.CompatLevel.Get())
	fmt.Fprintf(out, "  %-18s %s\n", "License:", a.License.Get())
	if h := a.Homepage.Get(); h != "" {
		fmt.Fprintf(out, "  %-18s %s\n", "Homepage:", h)
	}
	fmt.Fprintf(out, "  %-18s %s\n", "Build-Depends:", a.BuildDepends.Get())

	titleColor.Fprintln(out, "Binary packages")
	for _, b := range a.Binaries() {
		fmt.Fprintf(out, "  %s (%s, %s)\n", b.Name, b.Architecture.Get(), b.Section.Get())
		if b.Synopsis.IsSet() {
			fmt.Fprintf(out, "    %s\n", b.Synopsis.Get())
		}
		if b.Depends.IsSet() {
			fmt.Fprintf(out, "    Depends: %s\n", b.Depends.Get())
		}
		for _, f := range b.InstallFiles {
			fmt.Fprintf(out, "    installs %s\n", f)
		}
	}
	return nil
}
