package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/hr-service-desk/internal/app"
	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/service"
)

func newChatCmd(opts *globalOpts) *cobra.Command {
	var dispatch bool

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the HR assistant",
		Long: "Sends one message to the HR assistant, or starts an interactive session\n" +
			"reading one message per line from stdin when no message is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			desk, err := openDesk(cmd, opts)
			if err != nil {
				return err
			}
			defer desk.Close()

			if len(args) > 0 {
				return chatTurn(cmd, desk, opts, strings.Join(args, " "), dispatch)
			}
			return chatSession(cmd, desk, opts, dispatch)
		},
	}

	cmd.Flags().BoolVar(&dispatch, "dispatch", true, "open cases when the assistant says one is needed")
	return cmd
}

func chatSession(cmd *cobra.Command, desk *app.App, opts *globalOpts, dispatch bool) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit", "salir":
			return nil
		}

		if err := chatTurn(cmd, desk, opts, line, dispatch); err != nil {
			return err
		}
	}
}

func chatTurn(cmd *cobra.Command, desk *app.App, opts *globalOpts, message string, dispatch bool) error {
	ctx := cmd.Context()
	resp := model.ChatResponse{ChatReply: desk.FrontDesk.Chat(ctx, opts.userID, message)}

	if dispatch && resp.RequiresCase {
		resp.Cases = service.Views(desk.Dispatcher.ProcessUserInput(ctx, opts.userID, message))
	}

	if opts.asJSON {
		return printJSON(cmd.OutOrStdout(), resp)
	}
	printChat(cmd.OutOrStdout(), resp)
	return nil
}
