package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsJSON bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initWorkflow(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sessions, err := env.Controller.Sessions(ctx)
		if err != nil {
			return err
		}

		if sessionsJSON {
			return printJSON(sessions)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTAGE\tCOMPANIES\tUPDATED")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				s.ID, s.Stage, len(s.Companies), s.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sessionsCmd)
}
