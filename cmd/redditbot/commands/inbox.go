package commands

import (
	"fmt"

	"redditbot/internal/components/serviceutil"
	"redditbot/internal/monitor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var inboxSend bool

func init() {
	inboxCmd.Flags().BoolVar(&inboxSend, "send", false, "Actually send the planned replies and mark the messages read.")
	rootCmd.AddCommand(inboxCmd)
}

func renderPlans(plans []monitor.Plan) {
	t := newTable()
	t.AppendHeader(table.Row{"From", "Message", "Rule", "Reply", "Status"})
	for _, p := range plans {
		status := string(p.Status)
		if p.Err != nil {
			status = fmt.Sprintf("%s: %s", p.Status, p.Err)
		}
		t.AppendRow(table.Row{
			p.Message.Author,
			oneLine(p.Message.Body, 50),
			p.Rule,
			oneLine(p.Reply, 50),
			status,
		})
	}
	t.Render()
}

var inboxCmd = &cobra.Command{
	Use:   "inbox [--send]",
	Short: "Plans rule based replies to unread inbox messages, only sending them with --send.",
	Run: func(cmd *cobra.Command, args []string) {
		settings := mustSettings()
		client, err := newRedditClient(mustCredentials())
		if err != nil {
			serviceutil.Fatal("failed to create reddit client", err)
		}

		db := mustStore(settings)
		defer db.Close()

		responder := monitor.NewResponder(client, settings.ReplyRules, db, tel)
		plans, err := responder.Check(cmd.Context(), inboxSend)
		if err != nil {
			serviceutil.Fatal("inbox check failed", err)
		}

		fmt.Printf("Found %d unread messages.\n", len(plans))
		if len(plans) > 0 {
			renderPlans(plans)
		}
		if !inboxSend {
			fmt.Println("Dry run, nothing was sent. Pass --send to reply.")
		}
	},
}
