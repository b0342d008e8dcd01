package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var callCmd = &cobra.Command{
	Use:   "call <session-id> <row-id> <phone>",
	Short: "Place an outreach call and append its summary to the row's notes",
	Long:  "Places a Bland outreach call for the company row, waits for it to finish, analyzes the transcript, and appends the summary to the row's notes. The session returns to lead review whether the call succeeds or not.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.PlaceCall(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}

		if outcome, ok := session.Call(args[1]); ok {
			zap.L().Info("call finished",
				zap.String("call_id", outcome.CallID),
				zap.String("status", string(outcome.Status)),
			)
		}
		return printJSON(session)
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}
