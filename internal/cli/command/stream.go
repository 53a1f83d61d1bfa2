package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// StreamCommand returns the "stream" subcommand group, wrapping stream.* commands.
func StreamCommand() *cli.Command {
	return &cli.Command{
		Name:  "stream",
		Usage: "Publish and replay stream events",
		Subcommands: []*cli.Command{
			{
				Name:      "publish",
				Usage:     "Append an event to a room",
				ArgsUsage: "ROOM EVENT_TYPE PAYLOAD",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "producer-id", Usage: "identifies the publishing client"},
				},
				Action: streamPublish,
			},
			{
				Name:      "consume",
				Usage:     "Read events starting at an offset",
				ArgsUsage: "ROOM",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "from-offset", Usage: "first offset to read, inclusive"},
					&cli.IntFlag{Name: "limit", Value: 100, Usage: "maximum events to return"},
				},
				Action: streamConsume,
			},
		},
	}
}

func streamPublish(c *cli.Context) error {
	room := c.Args().Get(0)
	eventType := c.Args().Get(1)
	payload := c.Args().Get(2)
	if room == "" || eventType == "" || payload == "" {
		return fmt.Errorf("room, event type, and payload required")
	}
	req := map[string]any{"room": room, "event_type": eventType, "payload": payload}
	if producerID := c.String("producer-id"); producerID != "" {
		req["producer_id"] = producerID
	}
	result, err := sendCommand(c, "stream.publish", req)
	if err != nil {
		return err
	}
	return formatResult(c, result)
}

func streamConsume(c *cli.Context) error {
	room := c.Args().First()
	if room == "" {
		return fmt.Errorf("room required")
	}
	req := map[string]any{"room": room, "limit": c.Int("limit")}
	if from := c.Uint64("from-offset"); from > 0 {
		req["from_offset"] = from
	}
	result, err := sendCommand(c, "stream.consume", req)
	if err != nil {
		return err
	}
	return formatResult(c, result)
}
