package builtin

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mwantia/agentfs/cmd"
)

type LsCommand struct {
}

// Name returns the command identifier
func (ls *LsCommand) Name() string {
	return "ls"
}

// Description returns human-readable help text
func (ls *LsCommand) Description() string {
	return "List the direct children of a directory"
}

// Usage returns a usage string for help (e.g. "ls -l [path]")
func (ls *LsCommand) Usage() string {
	return "ls [-l] [path]"
}

// Execute runs the command with parsed arguments
// Returns exit code (0 = success) and error message
func (ls *LsCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	infos, err := api.LsInfo(ctx, args.Arg(0, "/"))
	if err != nil {
		return 1, err
	}

	for _, info := range infos {
		if !args.Bool("long") {
			fmt.Fprintln(writer, info.Path)
			continue
		}

		size := "<DIR>"
		if !info.IsDir {
			size = fmt.Sprintf("%d", info.Size)
		}

		modified := "-"
		if !info.ModifiedAt.IsZero() {
			modified = info.ModifiedAt.Format(time.DateTime)
		}

		fmt.Fprintf(writer, "%10s  %-19s  %s\n", size, modified, info.Path)
	}

	return 0, nil
}

// GetFlags returns the flag set for this command (this is optional)
func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"long": {Name: "long", Short: "l", Type: "bool", Description: "Show size and modification time"},
		},
	}
}
