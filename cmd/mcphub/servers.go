package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Show the availability status of every configured server",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadManager()
		if err != nil {
			return err
		}

		if _, err := manager.Discover(context.Background(), false); err != nil {
			return err
		}

		statuses := manager.StatusSnapshot()
		ids := make([]string, 0, len(statuses))
		for id := range statuses {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		tbl := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return lipgloss.NewStyle().Bold(true)
				}
				return lipgloss.NewStyle()
			}).
			Headers("SERVER", "STATUS", "UPDATED", "DETAIL")
		for _, id := range ids {
			status := statuses[id]
			detail := status.Error
			if status.AuthURL != "" {
				detail = fmt.Sprintf("authorize at %s", status.AuthURL)
			}
			tbl.Row(id, string(status.State), status.UpdatedAt.Format(time.RFC3339), detail)
		}
		fmt.Println(tbl.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serversCmd)
}
