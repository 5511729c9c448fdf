package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civic881027/ai-ticket-demo/guard"
	"github.com/civic881027/ai-ticket-demo/internal/utils"
	"github.com/civic881027/ai-ticket-demo/tickets"
)

func newTicketsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"ticket", "t"},
		Short:   "Work with support tickets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard.Allow(); err != nil {
				if errors.Is(err, guard.ErrLoginRequired) {
					return fmt.Errorf("%w: run `helpdesk login` first", err)
				}
				return err
			}
			return nil
		},
	}
	cmd.AddCommand(
		newTicketsListCmd(a),
		newTicketsShowCmd(a),
		newTicketsCreateCmd(a),
		newTicketsUpdateCmd(a),
		newTicketsDeleteCmd(a),
		newTicketsReplyCmd(a),
		newTicketsAIReplyCmd(a),
		newUsersCmd(a),
	)
	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ticket id %q", arg)
	}
	return id, nil
}

func assignee(t tickets.Ticket) string {
	if t.AssignedTo == nil {
		return "-"
	}
	return strconv.Itoa(*t.AssignedTo)
}

func newTicketsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tickets visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.tickets.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(list, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tCATEGORY\tASSIGNED\tCREATED")
				for _, t := range list {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						t.ID, t.Title, t.Status, t.Priority, t.Category, assignee(t), t.CreatedAt.Local().Format(timeLayout))
				}
			})
		},
	}
}

func (a *app) renderTicket(t *tickets.Ticket) error {
	return a.render(t, func(w io.Writer) {
		fmt.Fprintf(w, "ID\t%d\n", t.ID)
		fmt.Fprintf(w, "Title\t%s\n", t.Title)
		fmt.Fprintf(w, "Status\t%s\n", t.Status)
		fmt.Fprintf(w, "Priority\t%s\n", t.Priority)
		fmt.Fprintf(w, "Category\t%s\n", t.Category)
		if t.AISuggestedCategory != nil || t.AISuggestedPriority != nil {
			fmt.Fprintf(w, "AI suggestion\t%s / %s\n", utils.Value(t.AISuggestedCategory), utils.Value(t.AISuggestedPriority))
		}
		if t.CreatedBy != nil {
			fmt.Fprintf(w, "Created by\t%s\n", t.CreatedBy.Username)
		}
		fmt.Fprintf(w, "Assigned to\t%s\n", assignee(*t))
		fmt.Fprintf(w, "Created\t%s\n", t.CreatedAt.Local().Format(timeLayout))
		fmt.Fprintf(w, "\n%s\n", t.Description)
		for _, r := range t.Responses {
			author := r.CreatedBy.Username
			if r.IsAIGenerated {
				author += " (AI)"
			}
			fmt.Fprintf(w, "\n[%s] %s:\n%s\n", r.CreatedAt.Local().Format(timeLayout), author, r.ResponseText)
		}
	})
}

func newTicketsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a ticket and its responses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.tickets.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.renderTicket(t)
		},
	}
}

func newTicketsCreateCmd(a *app) *cobra.Command {
	var req tickets.CreateRequest
	var assignTo int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a new ticket; category and priority are suggested when omitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("assign") {
				req.AssignedTo = utils.Ptr(assignTo)
			}
			t, err := a.tickets.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.renderTicket(t)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Title, "title", "", "ticket title")
	flags.StringVar(&req.Description, "description", "", "ticket description")
	flags.StringVar(&req.Category, "category", "", "category")
	flags.StringVar(&req.Priority, "priority", "", "low, medium, high or urgent")
	flags.IntVar(&assignTo, "assign", 0, "id of the user to assign")
	return cmd
}

func newTicketsUpdateCmd(a *app) *cobra.Command {
	var title, description, category, priority, status string
	var assignTo int

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req tickets.UpdateRequest
			flags := cmd.Flags()
			if flags.Changed("title") {
				req.Title = utils.Ptr(title)
			}
			if flags.Changed("description") {
				req.Description = utils.Ptr(description)
			}
			if flags.Changed("category") {
				req.Category = utils.Ptr(category)
			}
			if flags.Changed("priority") {
				req.Priority = utils.Ptr(priority)
			}
			if flags.Changed("status") {
				req.Status = utils.Ptr(status)
			}
			if flags.Changed("assign") {
				req.AssignedTo = utils.Ptr(assignTo)
			}
			if req == (tickets.UpdateRequest{}) {
				return errors.New("nothing to update")
			}

			t, err := a.tickets.Update(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return a.renderTicket(t)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "new title")
	flags.StringVar(&description, "description", "", "new description")
	flags.StringVar(&category, "category", "", "new category")
	flags.StringVar(&priority, "priority", "", "low, medium, high or urgent")
	flags.StringVar(&status, "status", "", "open, in_progress, resolved or closed")
	flags.IntVar(&assignTo, "assign", 0, "id of the user to assign")
	return cmd
}

func newTicketsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.tickets.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted ticket %d\n", id)
			return nil
		},
	}
}

func (a *app) renderResponse(r *tickets.Response) error {
	return a.render(r, func(w io.Writer) {
		fmt.Fprintf(w, "Response\t%d\n", r.ID)
		fmt.Fprintf(w, "AI generated\t%t\n", r.IsAIGenerated)
		fmt.Fprintf(w, "\n%s\n", r.ResponseText)
	})
}

func newTicketsReplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reply ID TEXT...",
		Short: "Post a reply on a ticket",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.tickets.Reply(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.renderResponse(r)
		},
	}
}

func newTicketsAIReplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ai-reply ID",
		Short: "Generate a suggested reply for a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.tickets.AIReply(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.renderResponse(r)
		},
	}
}

func newUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users tickets can be assigned to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.tickets.Users(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(users, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL")
				for _, u := range users {
					fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Username, u.Email)
				}
			})
		},
	}
}
