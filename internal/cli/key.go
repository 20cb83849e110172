package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/j-veylop/openai-cost-tui/internal/services"
	"github.com/j-veylop/openai-cost-tui/internal/services/credentials"
)

const keyTimeout = 10 * time.Second

func newSetKeyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key",
		Short: "Store the OpenAI admin API key",
		Long: `Reads the key from the terminal without echo, or from stdin when piped:

  echo "$OPENAI_ADMIN_KEY" | oct set-key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := readKey(cmd)
			if err != nil {
				return err
			}

			return withManager(opts, func(mgr *services.Manager) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), keyTimeout)
				defer cancel()

				if err := mgr.SetCredential(ctx, key); err != nil {
					return fmt.Errorf("failed to store key: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored API key %s\n", credentials.Mask(key))
				return nil
			})
		},
	}
}

func newDeleteKeyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-key",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(opts, func(mgr *services.Manager) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), keyTimeout)
				defer cancel()

				_, present, err := mgr.Credential(ctx)
				if err != nil {
					return err
				}
				if !present {
					fmt.Fprintln(cmd.OutOrStdout(), "No API key stored")
					return nil
				}
				if err := mgr.DeleteCredential(ctx); err != nil {
					return fmt.Errorf("failed to delete key: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key deleted")
				return nil
			})
		},
	}
}

// readKey prompts without echo on a terminal and reads the first line
// otherwise.
func readKey(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "OpenAI admin API key: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		return "", credentials.ErrEmptyCredential
	}
	return key, nil
}
