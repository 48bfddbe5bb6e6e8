package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

var ErrUnknownCommand = errors.New("cmd: unknown command")

// CommandCenter holds every registered command and dispatches command lines to them.
type CommandCenter struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewCommandCenter() *CommandCenter {
	return &CommandCenter{
		commands: make(map[string]Command),
	}
}

func (cc *CommandCenter) Register(command Command) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if _, exists := cc.commands[command.Name()]; exists {
		return fmt.Errorf("cmd: command '%s' already registered", command.Name())
	}

	cc.commands[command.Name()] = command
	return nil
}

// Commands returns all registered commands ordered by name.
func (cc *CommandCenter) Commands() []Command {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	commands := make([]Command, 0, len(cc.commands))
	for _, command := range cc.commands {
		commands = append(commands, command)
	}

	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})
	return commands
}

// Execute runs the command named by args[0] with the remaining arguments.
func (cc *CommandCenter) Execute(ctx context.Context, api API, writer io.Writer, args ...string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}

	cc.mu.RLock()
	command, exists := cc.commands[args[0]]
	cc.mu.RUnlock()

	if !exists {
		return 127, fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}

	parsed, err := NewParser(command.GetFlags()).Parse(args[1:])
	if err != nil {
		return 2, fmt.Errorf("%s: %w\nusage: %s", command.Name(), err, command.Usage())
	}

	return command.Execute(ctx, api, parsed, writer)
}

// ExecuteLine splits line into arguments and executes it.
func (cc *CommandCenter) ExecuteLine(ctx context.Context, api API, writer io.Writer, line string) (int, error) {
	args, err := SplitCommandLine(line)
	if err != nil {
		return 2, err
	}

	return cc.Execute(ctx, api, writer, args...)
}

// Help writes the usage of every registered command.
func (cc *CommandCenter) Help(writer io.Writer) {
	for _, command := range cc.Commands() {
		fmt.Fprintf(writer, "%-40s %s\n", command.Usage(), command.Description())
	}
}
