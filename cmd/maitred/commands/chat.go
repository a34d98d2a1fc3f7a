package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"maitred/internal/app"
	"maitred/internal/concierge"
	"maitred/internal/session"

	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long:  "Starts a local session and reads one query per line. Type 'salir' or send EOF to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runChat(ctx, a.Concierge, a.Sessions.Create(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runChat reads queries from in until EOF or an exit word and writes each reply to out
func runChat(ctx context.Context, c *concierge.Concierge, sess *session.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "🤖 %s\n", session.Greeting)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "salir", "exit", "quit":
			fmt.Fprintln(out, "🤖 ¡Hasta pronto!")
			return nil
		}

		fmt.Fprintf(out, "🤖 %s\n", c.HandleQuery(ctx, sess, line))
	}
}
