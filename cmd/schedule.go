package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <session-id> <row-id>",
	Short: "Extract a meeting from the row's notes and put it on the calendar",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.ScheduleMeeting(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		if session.LastError != "" {
			zap.L().Warn("scheduling did not complete", zap.String("reason", session.LastError))
		}
		return printJSON(session)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
