// Package flagx lets several parsers share one command line. Each layer picks
// out its own flags before parsing, so flags that belong to another layer never
// fail with "flag provided but not defined".
package flagx

import "strings"

// configFlags name the JSON config file in every binary.
var configFlags = []string{"-c", "-config", "--config"}

// FilterArgs keeps the flags named in allowed together with their values and
// drops everything else. A value is either attached ("--config=a.json") or the
// next argument, unless that argument starts with '-'. Parsing stops at "--".
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		keep[f] = true
	}

	out := []string{}
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			break
		}
		name, _, attached := strings.Cut(args[i], "=")
		if !isFlag(name) || !keep[name] {
			continue
		}
		out = append(out, args[i])
		if !attached && i+1 < len(args) && !isFlag(args[i+1]) {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// ConfigPath returns the file given with -c, -config or --config. The last
// occurrence wins; empty means no file.
func ConfigPath(args []string) string {
	var path string
	picked := FilterArgs(args, configFlags)
	for i := 0; i < len(picked); i++ {
		if _, v, ok := strings.Cut(picked[i], "="); ok {
			path = v
			continue
		}
		if i+1 < len(picked) && !isFlag(picked[i+1]) {
			i++
			path = picked[i]
		}
	}
	return path
}

func isFlag(s string) bool { return len(s) > 1 && s[0] == '-' }
