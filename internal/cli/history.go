package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martijn/cmdgate/internal/core/domain"
	"github.com/martijn/cmdgate/internal/core/repository"
)

var (
	historyLimit  int
	historyStatus string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived executions",
	Long:  "List archived executions from the sqlite archive, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := initServices(true)
		if err != nil {
			return err
		}
		defer services.Close()

		filter := repository.ExecutionFilter{Limit: historyLimit}
		if historyStatus != "" {
			if historyStatus != string(domain.ExecutionStatusSuccess) && historyStatus != string(domain.ExecutionStatusFailed) {
				return fmt.Errorf("invalid status %q, expected success or failed", historyStatus)
			}
			filter.Status = domain.ExecutionStatus(historyStatus)
		}

		records, err := services.ExecutionService.ListArchived(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list executions: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No archived executions")
			return nil
		}

		for _, record := range records {
			killed := ""
			if record.Killed {
				killed = " (killed)"
			}
			fmt.Printf("%s  %-7s  exit=%d%s  %6dms  %s\n",
				record.StartTime.Format("2006-01-02 15:04:05"),
				record.Status,
				record.ExitCode,
				killed,
				record.DurationMs,
				record.Command,
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 25, "maximum number of entries")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "filter by status (success|failed)")
}
