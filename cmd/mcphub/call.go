package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentrelay/mcp-hub-go/pkg/mcphub"
)

var callArgs string

var callCmd = &cobra.Command{
	Use:   "call <wire-name>",
	Short: "Invoke a namespaced tool, e.g. mcp__docs__search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := loadManager()
		if err != nil {
			return err
		}

		result, err := manager.ExecuteToolCall(context.Background(), mcphub.ToolCall{
			Name:      args[0],
			Arguments: callArgs,
		})
		if err != nil {
			if authErr, ok := mcphub.IsAuthRequired(err); ok && authErr.URL != "" {
				log.Warnf("authorization required, visit %s", authErr.URL)
			}
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func init() {
	callCmd.Flags().StringVar(&callArgs, "args", "", "tool arguments as a JSON object")
	rootCmd.AddCommand(callCmd)
}
