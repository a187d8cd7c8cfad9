package main

import (
	"effisense-go/internal/config"
	"effisense-go/internal/repository"
	"effisense-go/internal/service"
	"effisense-go/pkg/database"
	"effisense-go/pkg/llm"
	"fmt"

	"github.com/spf13/cobra"
)

var seedUsername string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace an account's data with generated demo data",
	Long: `Deletes the account's homes, appliances and usages and generates 10-20 homes,
50-70 appliances and 100-200 usages over the last 30 days. Names come from the
configured completion service when available.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedUsername, "username", "", "account to fill (required)")
	_ = seedCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := openDB(); err != nil {
		return err
	}
	defer database.Close(database.DB)

	user, err := repository.NewUserRepository(database.DB).FindByUsername(seedUsername)
	if err != nil {
		return fmt.Errorf("finding user %q: %w", seedUsername, err)
	}

	seeds := service.NewSeedService(repository.NewUnitOfWork(database.DB), llm.NewClient(config.Conf.LLM), nil)
	result, err := seeds.FillDatabase(cmd.Context(), user.ID)
	if err != nil {
		return fmt.Errorf("filling database: %w", err)
	}

	fmt.Printf("Filled %s: %d homes, %d appliances, %d usages\n", user.Username, result.Homes, result.Appliances, result.Usages)
	return nil
}
