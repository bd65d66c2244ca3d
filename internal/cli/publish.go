package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ClientFunc лениво создаёт клиента после разбора флагов.
type ClientFunc func(ctx context.Context) (*Client, error)

// NewPublishCmd создаёт команду публикации JSON-объекта в очередь.
func NewPublishCmd(clientFn ClientFunc, outputFn func() *Output, queueFn func() string) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a JSON object to the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var obj map[string]any
			if err := json.Unmarshal([]byte(data), &obj); err != nil {
				return fmt.Errorf("invalid --data, expected JSON object: %w", err)
			}

			client, err := clientFn(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			queue := queueFn()
			status, err := client.Publisher.Publish(cmd.Context(), obj, queue)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Object published to %s", queue))
			out.Print(
				[]string{"QUEUE", "STATUS"},
				[][]string{{queue, status.String()}},
				map[string]any{"queue": queue, "status": status},
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON object to publish")
	cmd.MarkFlagRequired("data")

	return cmd
}
