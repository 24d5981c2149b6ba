package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/decree-tools/decree/internal/changelog"
)

func changelogCmd() *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Render a grouped changelog from git history",
		Long: `Reads git history and renders it as a markdown changelog, grouped by
commit type in the order decree.toml configures. Commits whose subject
does not parse, or whose type has no configured group, land under
"Other". Identical input always produces byte-identical output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, m, err := loadProject()
			if err != nil {
				return err
			}

			commits, err := changelog.ReadLog(root, since)
			if err != nil {
				return err
			}

			fmt.Print(changelog.Render(m.Changelog, since, commits))
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "start ref (exclusive), e.g. a release tag")

	return cmd
}
