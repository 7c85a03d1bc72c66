package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"groceryagent/assistant"

	"github.com/spf13/cobra"
)

const (
	welcome = `Welcome to the Grocery AI Chatbot!
You can tell me naturally what you want to do. For example:
- 'I want to make lasagna for 6 people'
- 'Add 2 cups of sugar to my grocery list'
- 'I already have 3 onions in my pantry'
- 'Show me my grocery list'
- 'Remove milk from my list'`

	chatPrompt = "\nHow can I help with your grocery needs? (Type 'exit' to quit): "
)

func newChatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant on the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, cleanup, err := setup(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, cleanup()) }()

			return runChat(cmd.Context(), a.Assistant, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChat reads one utterance per line until the user says goodbye or input ends.
func runChat(ctx context.Context, a *assistant.Assistant, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, welcome)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		res, err := a.HandleUtterance(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Text)
		if res.Done {
			return nil
		}
	}
}
