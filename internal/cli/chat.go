package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-portal-api/internal/chat"
	"github.com/noah-isme/course-portal-api/internal/models"
)

func newChatCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <module-id> <topic>",
		Short: "Chat with the assistant about a topic (/quit to leave)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			session := chat.NewSession(args[0], args[1], app.Portal, app.logger())
			scanner := bufio.NewScanner(cmd.InOrStdin())

			printed := 0
			fmt.Fprintf(out, "Chatting about %s / %s\n", args[0], args[1])
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "/quit" {
					return nil
				}
				if session.Sending() {
					fmt.Fprintln(out, "Still waiting for the last reply.")
					continue
				}

				done := make(chan struct{})
				go func() {
					defer close(done)
					_, _ = session.Send(cmd.Context(), text)
				}()
				fmt.Fprintf(out, "assistant: %s\n", chat.ThinkingPlaceholder)
				<-done

				lines := session.Render()
				for _, line := range lines[printed:] {
					if line.Placeholder || line.Role == models.RoleUser {
						continue
					}
					fmt.Fprintf(out, "assistant: %s\n", line.Text)
				}
				printed = len(lines)
			}
		},
	}
}
