package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hivellm/synap/internal/cli/output"
)

// DataCommand returns the "data" subcommand group, wrapping kv.* commands
// over the envelope protocol.
func DataCommand() *cli.Command {
	return &cli.Command{
		Name:  "data",
		Usage: "Read and write keys on the connected server",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Get the value stored at a key",
				ArgsUsage: "KEY",
				Action:    dataGet,
			},
			{
				Name:      "set",
				Usage:     "Set a key to a value",
				ArgsUsage: "KEY VALUE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "ttl", Usage: "expiry in seconds"},
				},
				Action: dataSet,
			},
			{
				Name:      "del",
				Usage:     "Delete a key",
				ArgsUsage: "KEY",
				Action:    dataDel,
			},
			{
				Name:      "expire",
				Usage:     "Set a key's time-to-live",
				ArgsUsage: "KEY SECONDS",
				Action:    dataExpire,
			},
		},
	}
}

func dataGet(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("key required")
	}
	payload, err := sendCommand(c, "kv.get", map[string]any{"key": key})
	if err != nil {
		return err
	}
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(output.Format(flags.Output), flags.Wide).Format(os.Stdout, payload)
}

func dataSet(c *cli.Context) error {
	key := c.Args().Get(0)
	value := c.Args().Get(1)
	if key == "" || value == "" {
		return fmt.Errorf("key and value required")
	}
	req := map[string]any{"key": key, "value": value}
	if ttl := c.Int("ttl"); ttl > 0 {
		req["ttl_seconds"] = ttl
	}
	payload, err := sendCommand(c, "kv.set", req)
	if err != nil {
		return err
	}
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(output.Format(flags.Output), flags.Wide).Format(os.Stdout, payload)
}

func dataDel(c *cli.Context) error {
	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("key required")
	}
	payload, err := sendCommand(c, "kv.del", map[string]any{"key": key})
	if err != nil {
		return err
	}
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(output.Format(flags.Output), flags.Wide).Format(os.Stdout, payload)
}

func dataExpire(c *cli.Context) error {
	key := c.Args().Get(0)
	secondsStr := c.Args().Get(1)
	if key == "" || secondsStr == "" {
		return fmt.Errorf("key and seconds required")
	}
	var seconds int
	if _, err := fmt.Sscanf(secondsStr, "%d", &seconds); err != nil {
		return fmt.Errorf("invalid seconds: %s", secondsStr)
	}
	payload, err := sendCommand(c, "kv.expire", map[string]any{"key": key, "ttl_seconds": seconds})
	if err != nil {
		return err
	}
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(output.Format(flags.Output), flags.Wide).Format(os.Stdout, payload)
}
