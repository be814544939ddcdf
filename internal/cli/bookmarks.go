package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/xmigraph/pkg/integrations/leanix"
)

// bookmarksCommand creates the bookmarks command with subcommands.
func (c *CLI) bookmarksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "Work with LeanIX bookmarks",
	}

	cmd.AddCommand(c.bookmarksListCommand())

	return cmd
}

// bookmarksListCommand creates the "bookmarks list" subcommand.
func (c *CLI) bookmarksListCommand() *cobra.Command {
	var (
		typ     string
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workspace bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := c.leanixClient(ctx, false)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Fetching bookmarks...")
			spinner.Start()
			marks, err := client.ListBookmarks(ctx, typ, refresh)
			if err != nil {
				spinner.StopWithError("Could not list bookmarks")
				return err
			}
			spinner.Stop()

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(marks)
			}
			if len(marks) == 0 {
				printInfo("No %s bookmarks", typ)
				return nil
			}
			printBookmarkTable(marks)
			printDetail("%d bookmarks", len(marks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", leanix.TypeVisualizer, "bookmark type")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON to stdout")

	return cmd
}

func printBookmarkTable(marks []leanix.Bookmark) {
	rows := make([][]string, 0, len(marks))
	for _, b := range marks {
		graph := "—"
		if x := b.GraphXML(); x != "" {
			graph = fmt.Sprintf("%d bytes", len(x))
		}
		rows = append(rows, []string{b.Name, b.ID, orDash(b.GroupKey), graph})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "ID", "Group", "Graph").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 0:
				return StyleHighlight
			case col == 1:
				return StyleDim
			}
			return StyleValue
		})
	fmt.Fprintln(reportOut, t.Render())
}
