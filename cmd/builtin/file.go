package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/agentfs/cmd"
	"github.com/mwantia/agentfs/data"
)

var errMissingArgs = errors.New("missing arguments")

type ReadCommand struct {
}

func (*ReadCommand) Name() string {
	return "read"
}

func (*ReadCommand) Description() string {
	return "Print numbered lines of a file"
}

func (*ReadCommand) Usage() string {
	return "read [-o offset] [-n limit] <path>"
}

func (*ReadCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 1 {
		return 2, errMissingArgs
	}

	content, err := api.Read(ctx, args.Args[0], args.Int("offset"), args.Int("limit"))
	if err != nil {
		return 1, err
	}

	fmt.Fprintln(writer, content)
	return 0, nil
}

func (*ReadCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"offset": {Name: "offset", Short: "o", Type: "int", Default: int64(0), Description: "First line to print, starting at 0"},
			"limit":  {Name: "limit", Short: "n", Type: "int", Default: int64(data.DefaultReadLimit), Description: "Maximum number of lines"},
		},
	}
}

type WriteCommand struct {
}

func (*WriteCommand) Name() string {
	return "write"
}

func (*WriteCommand) Description() string {
	return "Create a new file; existing files are never overwritten"
}

func (*WriteCommand) Usage() string {
	return "write <path> <content...>"
}

func (*WriteCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 1 {
		return 2, errMissingArgs
	}

	res, err := api.Write(ctx, args.Args[0], strings.Join(args.Args[1:], " "))
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "Updated file %s\n", res.Path)
	return 0, nil
}

func (*WriteCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}

type EditCommand struct {
}

func (*EditCommand) Name() string {
	return "edit"
}

func (*EditCommand) Description() string {
	return "Replace a unique string in a file"
}

func (*EditCommand) Usage() string {
	return "edit [-a] <path> <old> <new>"
}

func (*EditCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 3 {
		return 2, errMissingArgs
	}

	res, err := api.Edit(ctx, args.Args[0], args.Args[1], args.Args[2], args.Bool("all"))
	if err != nil {
		return 1, err
	}

	fmt.Fprintf(writer, "Successfully replaced %d instance(s) of the string in '%s'\n", res.Occurrences, res.Path)
	return 0, nil
}

func (*EditCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"all": {Name: "all", Short: "a", Type: "bool", Description: "Replace every occurrence"},
		},
	}
}
