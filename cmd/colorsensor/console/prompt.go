package console

import (
	"strings"

	"github.com/chzyer/readline"
)

const (
	Yes = "y"
	No  = "n"
)

// Confirm asks a yes/no question defaulting to no.
func Confirm(question string) (bool, error) {
	answer, err := Prompt(question, No, Yes)
	if err != nil {
		return false, err
	}
	return answer == Yes, nil
}

// Prompt reads one line. With constraints, the first one is the default and any
// answer outside the set falls back to it.
func Prompt(question string, constraints ...string) (string, error) {
	if len(constraints) > 0 {
		options := append([]string{strings.ToUpper(constraints[0])}, constraints[1:]...)
		question += " [" + strings.Join(options, "/") + "]:"
	}
	rl, err := readline.NewEx(&readline.Config{Prompt: question, Stdout: writer, Stderr: errWriter})
	if err != nil {
		return "", err
	}
	defer func() { _ = rl.Close() }()
	response, err := rl.Readline()
	if err != nil {
		return "", err
	}
	if len(constraints) == 0 {
		return response, nil
	}
	normalized := strings.ToLower(strings.TrimSpace(response))
	for _, c := range constraints {
		if normalized == c {
			return normalized, nil
		}
	}
	return constraints[0], nil
}
