package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	discoverForce bool
	discoverJSON  bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Query every enabled server and print the aggregated tool catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadManager()
		if err != nil {
			return err
		}

		result, err := manager.Discover(context.Background(), discoverForce)
		if err != nil {
			return err
		}

		if discoverJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{
				"tools":    result.Tools,
				"errors":   result.Errors,
				"statuses": result.Statuses,
				"context":  result.Context,
			})
		}

		if result.Context != "" {
			fmt.Println(result.Context)
			fmt.Println()
		}

		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Bold(true)
				}
				return lipgloss.NewStyle()
			}).
			Headers("TOOL", "DESCRIPTION")
		for _, tool := range result.Tools {
			tbl.Row(tool.Name, tool.Description)
		}
		fmt.Println(tbl.Render())

		for _, entry := range result.Errors {
			line := fmt.Sprintf("%s (%s): %s: %s", entry.ServerID, entry.Transport, entry.Status, entry.Message)
			if entry.AuthURL != "" {
				line += fmt.Sprintf(" (authorize at %s)", entry.AuthURL)
			}
			fmt.Fprintln(os.Stderr, line)
		}
		return nil
	},
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverForce, "force", false, "bypass the discovery cache")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "print the aggregate as JSON")
	rootCmd.AddCommand(discoverCmd)
}
