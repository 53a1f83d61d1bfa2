package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// AdminCommand returns the "admin" subcommand group, wrapping the
// durability and slowlog admin.* commands.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Operational commands: snapshots, WAL status, slowlog",
		Subcommands: []*cli.Command{
			{
				Name:  "snapshot",
				Usage: "Durability snapshot management",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Materialize a new snapshot immediately",
						Action: adminSnapshotCreate,
					},
					{
						Name:   "list",
						Usage:  "List retained snapshots",
						Action: adminSnapshotList,
					},
				},
			},
			{
				Name:  "wal",
				Usage: "Write-ahead log status",
				Subcommands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "Report the WAL's current sequence number",
						Action: adminWALStatus,
					},
				},
			},
			{
				Name:  "slowlog",
				Usage: "Recent slow commands",
				Subcommands: []*cli.Command{
					{
						Name:  "get",
						Usage: "List recent slow commands",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 10, Usage: "maximum entries to return"},
						},
						Action: adminSlowlogGet,
					},
				},
			},
		},
	}
}

func adminSnapshotCreate(c *cli.Context) error {
	result, err := sendCommand(c, "admin.snapshot.create", nil)
	if err != nil {
		return fmt.Errorf("snapshot create failed: %w", err)
	}
	return formatResult(c, result)
}

func adminSnapshotList(c *cli.Context) error {
	result, err := sendCommand(c, "admin.snapshot.list", nil)
	if err != nil {
		return err
	}
	return formatResult(c, result)
}

func adminWALStatus(c *cli.Context) error {
	result, err := sendCommand(c, "admin.wal.status", nil)
	if err != nil {
		return err
	}
	return formatResult(c, result)
}

func adminSlowlogGet(c *cli.Context) error {
	result, err := sendCommand(c, "admin.slowlog.get", map[string]any{"limit": c.Int("limit")})
	if err != nil {
		return err
	}
	return formatResult(c, result)
}
