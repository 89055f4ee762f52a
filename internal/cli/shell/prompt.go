// Package shell provides the interactive mode of the sessiondx CLI.
package shell

import (
	"fmt"
	"strings"
)

// readLine prints a prompt and reads one trimmed line.
func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptRequired asks until a non-empty value is entered.
func (s *Shell) promptRequired(label string) (string, error) {
	for {
		value, err := s.readLine(label + ": ")
		if err != nil {
			return "", err
		}
		if value != "" {
			return value, nil
		}
		fmt.Fprintf(s.out, "%s must not be empty.\n", label)
	}
}

// promptDefault asks once; an empty answer selects the default.
func (s *Shell) promptDefault(label, def string) (string, error) {
	prompt := label + ": "
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, def)
	}
	value, err := s.readLine(prompt)
	if err != nil {
		return "", err
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}

// confirm asks a yes/no question, defaulting to no.
func (s *Shell) confirm(question string) (bool, error) {
	value, err := s.readLine(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	return value == "y" || value == "Y", nil
}
