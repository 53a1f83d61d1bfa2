// Package command provides CLI command definitions for synap-cli.
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/hivellm/synap/internal/cli/connection"
	"github.com/hivellm/synap/internal/server/envelope"
)

// sendCommand posts an envelope to the connected server's command surface
// and returns its response payload. Every call gets its own monotonic
// request ID so server-side logs and client-side retries can correlate a
// request across both ends without the caller managing IDs itself.
func sendCommand(c *cli.Context, name string, payload map[string]any) (map[string]any, error) {
	client, err := EnsureConnected(c)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	env := envelope.Envelope{
		Command:   name,
		RequestID: ulid.Make().String(),
		Payload:   payload,
	}

	resp, err := client.Post(ctx, "/v1/command", env)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var result envelope.Response
	if err := connection.ParseResponse(resp, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		if result.Error != nil {
			return nil, fmt.Errorf("[%s] %s", result.Error.Code, result.Error.Message)
		}
		return nil, fmt.Errorf("command failed")
	}
	return result.Payload, nil
}
