package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/funckabots/internal/events"
)

// NewListenCmd создаёт команду чтения объектов из очереди.
func NewListenCmd(clientFn ClientFunc, outputFn func() *Output, queueFn func() string, pollFn func() time.Duration) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print objects received from the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFn(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			out := outputFn()
			received := 0
			for obj, err := range client.Source.Listen(cmd.Context(), queueFn(), pollFn()) {
				if err != nil {
					return err
				}

				out.Object(obj)
				if ev, ok := obj.(events.Event); ok {
					ev.Dispose()
				}

				received++
				if count > 0 && received >= count {
					break
				}
			}
			// Прерывание по сигналу — штатное завершение
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after N objects (0 = until interrupted)")

	return cmd
}
