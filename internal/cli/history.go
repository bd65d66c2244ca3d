package cli

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCmd создаёт команду просмотра журнала событий в PostgreSQL.
func NewHistoryCmd(clientFn ClientFunc, outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently received events (requires DB_HOST)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			if client.EventLog == nil {
				return errors.New("event log is not configured, set DB_HOST")
			}

			records, err := client.EventLog.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			headers := []string{"ID", "QUEUE", "VARIANT", "EVENT", "RECEIVED"}
			rows := make([][]string, len(records))
			for i, r := range records {
				rows[i] = []string{
					strconv.FormatInt(r.ID, 10),
					r.Queue,
					r.Variant,
					r.Summary,
					r.ReceivedAt.Format(time.RFC3339),
				}
			}

			outputFn().Print(headers, rows, records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of records")

	return cmd
}
