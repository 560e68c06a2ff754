package cli

import (
	"fmt"
	"strings"
)

// popArgs takes the leading positional arguments off args, leaving any
// flags for a FlagSet to parse. Positionals come first on this command
// surface (`add <context> <username> --note ...`), which the flag package
// cannot handle on its own.
func popArgs(args []string, names ...string) ([]string, []string, error) {
	pos := make([]string, 0, len(names))
	for i, name := range names {
		if i >= len(args) || strings.HasPrefix(args[i], "-") {
			return nil, nil, fmt.Errorf("missing argument: %s", name)
		}
		pos = append(pos, args[i])
	}
	return pos, args[len(names):], nil
}

// splitArgs splits a console line into arguments, honoring double quotes so
// notes with spaces survive the round trip.
func splitArgs(line string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	pending := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			pending = true
		case !inQuotes && (r == ' ' || r == '\t'):
			if pending {
				args = append(args, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	if pending {
		args = append(args, current.String())
	}

	return args
}
