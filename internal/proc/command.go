package proc

import (
	"fmt"
	"strings"
)

// SplitCommand splits a configured command line into argv. Single and
// double quotes group words; a backslash escapes the next character outside
// single quotes. No other shell syntax is interpreted.
//
//	SplitCommand(`java -jar "C:/Program Files/FFDec/ffdec.jar"`)
//	// ["java", "-jar", "C:/Program Files/FFDec/ffdec.jar"]
func SplitCommand(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("proc: unterminated %c quote in %q", quote, line)
	}
	if escaped {
		return nil, fmt.Errorf("proc: trailing backslash in %q", line)
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

// Expand replaces {name} placeholders in every argument.
func Expand(args []string, vars map[string]string) []string {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}
