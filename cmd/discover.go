package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var discoverCmd = &cobra.Command{
	Use:   "discover <session-id> <prompt...>",
	Short: "Discover and enrich leads from a natural-language prompt",
	Long:  "Runs the lead discovery pair: enumerates companies matching the prompt, then enriches each into a structured row. On success the session's company table is replaced and the session moves to lead review.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		prompt := strings.Join(args[1:], " ")
		session, err := env.Controller.DiscoverLeads(ctx, args[0], prompt)
		if err != nil {
			return err
		}

		if session.LastError != "" {
			zap.L().Warn("discovery did not complete", zap.String("reason", session.LastError))
		} else {
			zap.L().Info("discovery complete",
				zap.String("session", session.ID),
				zap.Int("companies", len(session.Companies)),
			)
		}
		return printJSON(session)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
