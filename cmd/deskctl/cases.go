package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/service"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
)

func newProcessCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "process <text>",
		Short: "Open and run cases from free text",
		Long: "Classifies the text into intents, opens one case per intent and runs each\n" +
			"case on its handler. Failed cases are reported but do not stop the others.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := openDesk(cmd, opts)
			if err != nil {
				return err
			}
			defer desk.Close()

			outcomes := desk.Dispatcher.ProcessUserInput(cmd.Context(), opts.userID, strings.Join(args, " "))
			views := service.Views(outcomes)

			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), model.ProcessResponse{Cases: views})
			}
			for _, v := range views {
				printCase(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func newCaseCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Inspect stored cases",
		Long:  "Reads cases from the configured store. Use CASE_STORE=sqlite or nats to\nsee cases opened by earlier runs.",
	}

	cmd.AddCommand(newCaseGetCmd(opts))
	cmd.AddCommand(newCaseListCmd(opts))
	return cmd
}

func newCaseGetCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "get <case-id>",
		Short: "Show one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := openDesk(cmd, opts)
			if err != nil {
				return err
			}
			defer desk.Close()

			c, err := desk.Store.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrCaseNotFound) || (err == nil && c.UserID != opts.userID) {
				return fmt.Errorf("case %s not found", args[0])
			}
			if err != nil {
				return err
			}

			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), c)
			}
			printCase(cmd.OutOrStdout(), model.CaseView{Case: *c})
			return nil
		},
	}
}

func newCaseListCmd(opts *globalOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your cases, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := openDesk(cmd, opts)
			if err != nil {
				return err
			}
			defer desk.Close()

			cases, err := desk.Store.ListByUser(cmd.Context(), opts.userID, limit)
			if err != nil {
				return err
			}
			if cases == nil {
				cases = []model.Case{}
			}

			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), model.ListCasesResponse{Cases: cases, Total: len(cases)})
			}
			printCaseTable(cmd.OutOrStdout(), cases)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of cases")
	return cmd
}
