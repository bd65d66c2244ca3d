package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/funckabots/internal/events"
)

// EventFile — JSON-описание события с сырыми payload'ами.
//
//	{
//	  "event_type": "message_new", "event_id": "42",
//	  "peer": {"bpid": 2000000001, "cid": 1, "name": "chat"},
//	  "user": {"uuid": 1, "name": "...", "firstname": "...", "lastname": "...", "nick": "..."},
//	  "message": {"cmid": 7, "text": "Hi!", "attachments": []}
//	}
type EventFile struct {
	EventType      string           `json:"event_type"`
	EventID        string           `json:"event_id"`
	PunishmentType string           `json:"punishment_type"`
	Comment        string           `json:"comment"`
	Peer           events.Payload   `json:"peer"`
	User           events.Payload   `json:"user"`
	Message        events.Payload   `json:"message"`
	MessageReply   events.Payload   `json:"message_reply"`
	MessageForward []events.Payload `json:"message_forward"`
	Button         events.Payload   `json:"button"`
	Reaction       events.Payload   `json:"reaction"`
	Warn           events.Payload   `json:"warn"`
	Unwarn         events.Payload   `json:"unwarn"`
	Kick           events.Payload   `json:"kick"`
}

// BuildEvent собирает событие варианта variant (vk или punishment) из JSON.
func BuildEvent(variant string, data []byte) (events.Event, error) {
	var f EventFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse event file: %w", err)
	}

	switch variant {
	case "vk":
		ev, err := events.BuildVkEvent(f.EventType, f.EventID, events.VkEventPayloads{
			Peer:           f.Peer,
			User:           f.User,
			Message:        f.Message,
			MessageReply:   f.MessageReply,
			MessageForward: f.MessageForward,
			Button:         f.Button,
			Reaction:       f.Reaction,
		})
		if err != nil {
			return nil, err
		}
		return ev, nil
	case "punishment":
		ev, err := events.BuildPunishment(f.PunishmentType, f.Comment, events.PunishmentPayloads{
			Peer:           f.Peer,
			User:           f.User,
			Message:        f.Message,
			MessageReply:   f.MessageReply,
			MessageForward: f.MessageForward,
			Warn:           f.Warn,
			Unwarn:         f.Unwarn,
			Kick:           f.Kick,
		})
		if err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event variant %q (want vk or punishment)", variant)
	}
}

// NewEventCmd создаёт команду публикации события из JSON-файла.
func NewEventCmd(clientFn ClientFunc, outputFn func() *Output, queueFn func() string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:       "event vk|punishment",
		Short:     "Build an event from a JSON file and publish it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"vk", "punishment"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(file)
			if err != nil {
				return err
			}

			ev, err := BuildEvent(args[0], data)
			if err != nil {
				return err
			}

			client, err := clientFn(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			queue := queueFn()
			status, err := client.Publisher.Publish(cmd.Context(), ev, queue)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Event published to %s: %s", queue, ev))
			out.Print(
				[]string{"QUEUE", "EVENT", "STATUS"},
				[][]string{{queue, ev.String(), status.String()}},
				map[string]any{"queue": queue, "event": ev.AsMap(), "status": status},
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with raw payloads (- for stdin)")

	return cmd
}

// readInput читает файл или stdin, если path равен "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}
