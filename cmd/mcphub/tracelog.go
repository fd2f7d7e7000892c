package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentrelay/mcp-hub-go/internal/tracelog"
)

var (
	traceFile   string
	traceID     string
	tracePhase  string
	traceRound  int
	traceOutput string
)

var tracelogCmd = &cobra.Command{
	Use:   "tracelog",
	Short: "Filter and render a newline-delimited JSON trace log",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(traceFile)
		if err != nil {
			return fmt.Errorf("opening trace log: %w", err)
		}
		defer f.Close()

		result, err := tracelog.Read(f)
		if err != nil {
			return err
		}
		if result.Skipped > 0 {
			log.Warnf("skipped %d malformed log lines", result.Skipped)
		}

		filter := tracelog.NewFilter()
		filter.TraceID = traceID
		filter.Phase = tracePhase
		filter.Round = traceRound

		rendered, err := tracelog.Render(filter.Apply(result.Events), traceOutput)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		if traceOutput == tracelog.OutputTable {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	tracelogCmd.Flags().StringVar(&traceFile, "file", "", "path to the trace log")
	tracelogCmd.Flags().StringVar(&traceID, "trace-id", "", "only events with this trace id")
	tracelogCmd.Flags().StringVar(&tracePhase, "phase", "", "only events in this phase")
	tracelogCmd.Flags().IntVar(&traceRound, "round", -1, "only events in this round")
	tracelogCmd.Flags().StringVar(&traceOutput, "output", tracelog.OutputJSON, "output encoding (json or table)")
	_ = tracelogCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(tracelogCmd)
}
