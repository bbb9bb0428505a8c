package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MarcoPoloResearchLab/lembrete/internal/auth"
	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
	"github.com/spf13/cobra"
)

var errAuthDisabled = errors.New("no signing secret configured; set --signing-secret or LEMBRETE_AUTH_SIGNING_SECRET")

func newMonthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Print a month grid with note markers and holidays",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			view := rt.controller.MonthView()
			if len(args) == 1 {
				month, err := calendar.ParseMonth(args[0])
				if err != nil {
					return err
				}
				view = rt.controller.MonthViewFor(month)
			}
			return renderMonth(cmd.OutOrStdout(), view)
		},
	}
}

func newNoteCommand() *cobra.Command {
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes attached to calendar days",
	}

	noteCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every note in date order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				rt, err := openRuntime(cmd.Context())
				if err != nil {
					return err
				}
				defer rt.Close()

				for _, note := range rt.notes.List() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", note.Date, note.Text)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get DD-MM-YYYY",
			Short: "Print the note for a day",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				date, err := calendar.ParseDateKey(args[0])
				if err != nil {
					return err
				}
				rt, err := openRuntime(cmd.Context())
				if err != nil {
					return err
				}
				defer rt.Close()

				text, ok := rt.notes.Text(date)
				if !ok {
					return fmt.Errorf("no note for %s", date.Key())
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set DD-MM-YYYY TEXT...",
			Short: "Create or replace the note for a day",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				date, err := calendar.ParseDateKey(args[0])
				if err != nil {
					return err
				}
				rt, err := openRuntime(cmd.Context())
				if err != nil {
					return err
				}
				defer rt.Close()

				return rt.notes.Upsert(cmd.Context(), date, strings.Join(args[1:], " "))
			},
		},
		&cobra.Command{
			Use:   "delete DD-MM-YYYY",
			Short: "Remove the note for a day",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				date, err := calendar.ParseDateKey(args[0])
				if err != nil {
					return err
				}
				rt, err := openRuntime(cmd.Context())
				if err != nil {
					return err
				}
				defer rt.Close()

				return rt.notes.Delete(cmd.Context(), date)
			},
		},
	)
	return noteCmd
}

func newTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			if !rt.config.AuthEnabled() {
				return errAuthDisabled
			}
			issuer, err := newTokenIssuer(rt.config)
			if err != nil {
				return err
			}
			token, _, err := issuer.IssueToken(auth.OwnerSubject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
