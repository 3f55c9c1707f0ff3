package cli

import (
	"context"
	"fmt"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal"
)

// Represents the 'devcaded version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
