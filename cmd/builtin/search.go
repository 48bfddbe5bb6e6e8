package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/mwantia/agentfs/cmd"
)

// GrepCommand prints matching lines, matching files or match counts per file.
type GrepCommand struct {
}

func (*GrepCommand) Name() string {
	return "grep"
}

func (*GrepCommand) Description() string {
	return "Search file contents with a regular expression"
}

func (*GrepCommand) Usage() string {
	return "grep [-g glob] [-l|-c] <pattern> [path]"
}

func (*GrepCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 1 {
		return 2, errMissingArgs
	}

	matches, err := api.Grep(ctx, args.Args[0], args.Arg(1, "/"), args.String("glob"))
	if err != nil {
		return 1, err
	}

	switch {
	case args.Bool("files"):
		seen := make(map[string]struct{})
		for _, m := range matches {
			if _, exists := seen[m.Path]; !exists {
				seen[m.Path] = struct{}{}
				fmt.Fprintln(writer, m.Path)
			}
		}

	case args.Bool("count"):
		order := make([]string, 0)
		counts := make(map[string]int)
		for _, m := range matches {
			if counts[m.Path] == 0 {
				order = append(order, m.Path)
			}
			counts[m.Path]++
		}

		for _, path := range order {
			fmt.Fprintf(writer, "%s:%d\n", path, counts[path])
		}

	default:
		for _, m := range matches {
			fmt.Fprintf(writer, "%s:%d:%s\n", m.Path, m.Line, m.Text)
		}
	}

	if len(matches) == 0 {
		return 1, nil
	}

	return 0, nil
}

func (*GrepCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"glob":  {Name: "glob", Short: "g", Type: "string", Description: "Only search files whose name matches"},
			"files": {Name: "files-with-matches", Short: "l", Type: "bool", Description: "Print matching file paths only"},
			"count": {Name: "count", Short: "c", Type: "bool", Description: "Print the number of matches per file"},
		},
	}
}

type GlobCommand struct {
}

func (*GlobCommand) Name() string {
	return "glob"
}

func (*GlobCommand) Description() string {
	return "Find files by glob pattern"
}

func (*GlobCommand) Usage() string {
	return "glob <pattern> [path]"
}

func (*GlobCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) < 1 {
		return 2, errMissingArgs
	}

	infos, err := api.Glob(ctx, args.Args[0], args.Arg(1, "/"))
	if err != nil {
		return 1, err
	}

	for _, info := range infos {
		fmt.Fprintln(writer, info.Path)
	}

	return 0, nil
}

func (*GlobCommand) GetFlags() *cmd.CommandFlagSet {
	return nil
}
