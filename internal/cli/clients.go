package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martijn/cmdgate/internal/infrastructure/sqlite"
)

var clientLabel string

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage API clients",
	Long:  "Create, list and delete API client credentials",
}

var clientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API client",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(true)
		if err != nil {
			return err
		}
		defer services.Close()

		client, secret, err := services.AuthService.CreateClient(cmd.Context(), clientLabel)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}

		fmt.Printf("Client created\n")
		fmt.Printf("ID:     %s\n", client.ID)
		fmt.Printf("Secret: %s\n", secret)
		fmt.Println("Store the secret now; it cannot be retrieved later.")

		return nil
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(true)
		if err != nil {
			return err
		}
		defer services.Close()

		repo := sqlite.NewClientRepository(services.DB)
		clients, err := repo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Println("No clients")
			return nil
		}

		for _, client := range clients {
			fmt.Printf("%s  %s  %s\n", client.ID, client.CreatedAt.Format("2006-01-02"), client.Label)
		}

		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an API client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(true)
		if err != nil {
			return err
		}
		defer services.Close()

		repo := sqlite.NewClientRepository(services.DB)
		if err := repo.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		fmt.Println("Client deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.AddCommand(clientsCreateCmd)
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	clientsCreateCmd.Flags().StringVar(&clientLabel, "label", "", "human-readable client label")
}
