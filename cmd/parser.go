package cmd

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses user-defined arguments into flags
type Parser struct {
	flagSet *CommandFlagSet
}

func NewParser(flagSet *CommandFlagSet) *Parser {
	if flagSet == nil {
		flagSet = &CommandFlagSet{}
	}

	return &Parser{
		flagSet: flagSet,
	}
}

func (cp *Parser) Parse(raw []string) (*CommandArgs, error) {
	args := &CommandArgs{
		Args:  make([]string, 0),
		Flags: make(map[string]any),
		Raw:   raw,
	}

	longToName := make(map[string]string)
	shortToName := make(map[string]string)
	for flagName, flag := range cp.flagSet.Flags {
		if flag.Default != nil {
			args.Flags[flagName] = flag.Default
		}

		longToName[flag.Name] = flagName
		if flag.Short != "" {
			shortToName[flag.Short] = flagName
		}
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			args.Args = append(args.Args, raw[i+1:]...)
			break
		}

		if key, ok := strings.CutPrefix(arg, "--"); ok {
			key, value, hasValue := strings.Cut(key, "=")
			flagName, exists := longToName[key]
			if !exists {
				return nil, fmt.Errorf("unknown flag: --%s", key)
			}

			flag := cp.flagSet.Flags[flagName]
			switch {
			case flag.Type == "bool" && !hasValue:
				args.Flags[flagName] = true
				continue
			case !hasValue && i+1 < len(raw):
				value = raw[i+1]
				i++
			case !hasValue:
				return nil, fmt.Errorf("flag --%s requires a value", key)
			}

			parsed, err := coerce(value, flag.Type)
			if err != nil {
				return nil, fmt.Errorf("flag --%s: %w", key, err)
			}
			args.Flags[flagName] = parsed
			continue
		}

		if strings.HasPrefix(arg, "-") && len(arg) > 1 && !isNumber(arg) {
			shorts := arg[1:]

			for j, char := range shorts {
				flagName, exists := shortToName[string(char)]
				if !exists {
					return nil, fmt.Errorf("unknown flag: -%c", char)
				}

				flag := cp.flagSet.Flags[flagName]
				if flag.Type == "bool" {
					args.Flags[flagName] = true
					continue
				}

				// Value is either the remainder of this token or the next one
				value := shorts[j+1:]
				if value == "" {
					if i+1 >= len(raw) {
						return nil, fmt.Errorf("flag -%c requires a value", char)
					}
					value = raw[i+1]
					i++
				}

				parsed, err := coerce(value, flag.Type)
				if err != nil {
					return nil, fmt.Errorf("flag -%c: %w", char, err)
				}
				args.Flags[flagName] = parsed
				break
			}
			continue
		}

		args.Args = append(args.Args, arg)
	}

	for flagName, flag := range cp.flagSet.Flags {
		if _, ok := args.Flags[flagName]; flag.Required && !ok {
			if flag.Short != "" {
				return nil, fmt.Errorf("required flag: -%s / --%s", flag.Short, flag.Name)
			}
			return nil, fmt.Errorf("required flag: --%s", flag.Name)
		}
	}

	return args, nil
}

// SplitCommandLine splits line into tokens, honoring single and double quotes.
// Inside double quotes a backslash escapes the next character.
func SplitCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder

	quote := rune(0)
	escaped := false
	started := false

	for _, ch := range line {
		switch {
		case escaped:
			current.WriteRune(ch)
			escaped = false

		case ch == '\\' && quote != '\'':
			escaped = true
			started = true

		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				current.WriteRune(ch)
			}

		case ch == '"' || ch == '\'':
			quote = ch
			started = true

		case ch == ' ' || ch == '\t':
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}

		default:
			current.WriteRune(ch)
			started = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote %c", quote)
	}

	if started {
		args = append(args, current.String())
	}

	return args, nil
}

func coerce(value, typeStr string) (any, error) {
	switch typeStr {
	case "int":
		return strconv.ParseInt(value, 10, 64)
	case "bool":
		return strconv.ParseBool(value)
	default:
		return value, nil
	}
}

func isNumber(arg string) bool {
	_, err := strconv.ParseInt(arg, 10, 64)
	return err == nil
}
