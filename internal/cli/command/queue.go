package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hivellm/synap/internal/cli/output"
)

// QueueCommand returns the "queue" subcommand group, wrapping queue.* commands.
func QueueCommand() *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "Publish and consume queue messages",
		Subcommands: []*cli.Command{
			{
				Name:      "publish",
				Usage:     "Publish a message onto a queue",
				ArgsUsage: "QUEUE PAYLOAD",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "priority", Usage: "delivery priority, higher first"},
				},
				Action: queuePublish,
			},
			{
				Name:      "consume",
				Usage:     "Consume the next ready message",
				ArgsUsage: "QUEUE CONSUMER_ID",
				Action:    queueConsume,
			},
			{
				Name:      "ack",
				Usage:     "Acknowledge a consumed message",
				ArgsUsage: "QUEUE MESSAGE_ID",
				Action:    queueAck,
			},
			{
				Name:      "nack",
				Usage:     "Reject a consumed message",
				ArgsUsage: "QUEUE MESSAGE_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "requeue", Usage: "requeue instead of routing to the dead-letter queue"},
				},
				Action: queueNack,
			},
		},
	}
}

func formatResult(c *cli.Context, payload map[string]any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(output.Format(flags.Output), flags.Wide).Format(os.Stdout, payload)
}

func queuePublish(c *cli.Context) error {
	queue := c.Args().Get(0)
	payload := c.Args().Get(1)
	if queue == "" || payload == "" {
		return fmt.Errorf("queue and payload required")
	}
	req := map[string]any{"queue": queue, "payload": payload}
	if p := c.Int("priority"); p > 0 {
		req["priority"] = p
	}
	result, err := sendCommand(c, "queue.publish", req)
	if err != nil {
		return err
	}
	return formatResult(c, result)
}

func queueConsume(c *cli.Context) error {
	queue := c.Args().Get(0)
	consumerID := c.Args().Get(1)
	if queue == "" || consumerID == "" {
		return fmt.Errorf("queue and consumer id required")
	}
	result, err := sendCommand(c, "queue.consume", map[string]any{"queue": queue, "consumer_id": consumerID})
	if err != nil {
		return err
	}
	return formatResult(c, result)
}

func queueAck(c *cli.Context) error {
	queue := c.Args().Get(0)
	messageID := c.Args().Get(1)
	if queue == "" || messageID == "" {
		return fmt.Errorf("queue and message id required")
	}
	result, err := sendCommand(c, "queue.ack", map[string]any{"queue": queue, "message_id": messageID})
	if err != nil {
		return err
	}
	return formatResult(c, result)
}

func queueNack(c *cli.Context) error {
	queue := c.Args().Get(0)
	messageID := c.Args().Get(1)
	if queue == "" || messageID == "" {
		return fmt.Errorf("queue and message id required")
	}
	req := map[string]any{"queue": queue, "message_id": messageID, "requeue": c.Bool("requeue")}
	result, err := sendCommand(c, "queue.nack", req)
	if err != nil {
		return err
	}
	return formatResult(c, result)
}
