package builtin

import "github.com/mwantia/agentfs/cmd"

// InitBuiltin registers every builtin command at center.
func InitBuiltin(center *cmd.CommandCenter) error {
	commands := []cmd.Command{
		&LsCommand{},
		&ReadCommand{},
		&WriteCommand{},
		&EditCommand{},
		&GrepCommand{},
		&GlobCommand{},
	}

	for _, command := range commands {
		if err := center.Register(command); err != nil {
			return err
		}
	}

	return nil
}
