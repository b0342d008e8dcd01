package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	kbURL       string
	kbName      string
	confirmFile string
	notesFile   string
	notesText   string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage outreach workflow sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new session at the knowledge-base stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.NewSession(ctx)
		if err != nil {
			return eris.Wrap(err, "create session")
		}

		zap.L().Info("session created", zap.String("session", session.ID))
		return printJSON(session)
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session's current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.Session(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(session)
	},
}

var sessionKBCmd = &cobra.Command{
	Use:   "kb <session-id>",
	Short: "Generate the knowledge base for your company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if kbURL == "" {
			return eris.New("--url is required")
		}

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.CreateKnowledgeBase(ctx, args[0], kbURL, kbName)
		if err != nil {
			return err
		}
		return printJSON(session)
	},
}

var sessionConfirmCmd = &cobra.Command{
	Use:   "confirm <session-id>",
	Short: "Confirm the knowledge base and move to lead discovery",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var edited string
		if confirmFile != "" {
			data, err := os.ReadFile(confirmFile)
			if err != nil {
				return eris.Wrap(err, "read edited knowledge base")
			}
			edited = string(data)
		}

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.ConfirmKnowledgeBase(ctx, args[0], edited)
		if err != nil {
			return err
		}
		return printJSON(session)
	},
}

var sessionNotesCmd = &cobra.Command{
	Use:   "notes <session-id> <row-id>",
	Short: "Replace a company row's notes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text := notesText
		if notesFile != "" {
			data, err := os.ReadFile(notesFile)
			if err != nil {
				return eris.Wrap(err, "read notes file")
			}
			text = string(data)
		}

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.UpdateNotes(ctx, args[0], args[1], text)
		if err != nil {
			return err
		}
		return printJSON(session)
	},
}

var sessionSelectCmd = &cobra.Command{
	Use:   "select <session-id> <row-id>",
	Short: "Select a company row for outreach",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := env.Controller.SelectCompany(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(session)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	sessionKBCmd.Flags().StringVar(&kbURL, "url", "", "your company's website URL")
	sessionKBCmd.Flags().StringVar(&kbName, "name", "", "your company's name")
	sessionConfirmCmd.Flags().StringVar(&confirmFile, "file", "", "file with the edited knowledge base (omit to accept as generated)")
	sessionNotesCmd.Flags().StringVar(&notesFile, "file", "", "file with the replacement notes")
	sessionNotesCmd.Flags().StringVar(&notesText, "text", "", "replacement notes text")

	sessionCmd.AddCommand(sessionNewCmd, sessionShowCmd, sessionKBCmd, sessionConfirmCmd, sessionNotesCmd, sessionSelectCmd)
	rootCmd.AddCommand(sessionCmd)
}
