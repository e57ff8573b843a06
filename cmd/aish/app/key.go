package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/siliconlad/aish/internal/secrets"
)

// Domain: API Key Management
// This file contains the key subcommand: storing the OpenAI API key in the
// OS credential store so it does not have to live in the environment.

// createKeyCommand creates the key subcommand tree
func (a *App) createKeyCommand() *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the OpenAI API key",
		Long: `Manage the OpenAI API key in the operating system credential store.

The shell looks for a key in the OPENAI_API_KEY environment variable first
and falls back to the credential store. Without either, LLM statements are
rejected.`,
	}

	keyCmd.AddCommand(&cobra.Command{
		Use:   "set [key]",
		Short: "Store the API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) == 1 {
				value = args[0]
			} else {
				fmt.Print("API key: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read key: %w", err)
				}
				value = strings.TrimSpace(line)
			}
			if value == "" {
				return fmt.Errorf("empty API key")
			}

			store, err := secrets.NewStore()
			if err != nil {
				return err
			}
			if err := store.SetAPIKey(value); err != nil {
				return err
			}
			fmt.Println("API key stored.")
			return nil
		},
	})

	keyCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored API key (masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := secrets.NewStore()
			if err != nil {
				return err
			}
			value, err := store.APIKey()
			if err != nil {
				if err == secrets.ErrSecretNotFound {
					fmt.Println("No API key stored.")
					return nil
				}
				return err
			}
			fmt.Println(mask(value))
			return nil
		},
	})

	keyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := secrets.NewStore()
			if err != nil {
				return err
			}
			if err := store.ClearAPIKey(); err != nil {
				return err
			}
			fmt.Println("API key removed.")
			return nil
		},
	})

	return keyCmd
}

// mask hides all but the edges of a key.
func mask(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}
