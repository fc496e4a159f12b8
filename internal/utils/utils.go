package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Rana718/tablekeep/internal/tables"
)

type InputUtils struct {
	in  io.Reader
	out io.Writer
}

func NewInputUtils(in io.Reader, out io.Writer) *InputUtils {
	return &InputUtils{in: in, out: out}
}

func (i *InputUtils) reader() io.Reader {
	if i == nil || i.in == nil {
		return os.Stdin
	}
	return i.in
}

func (i *InputUtils) writer() io.Writer {
	if i == nil || i.out == nil {
		return os.Stdout
	}
	return i.out
}

// GetUserChoice prompts user for choice from valid options
func (i *InputUtils) GetUserChoice(validOptions []string, prompt string, force bool) string {
	if force {
		return validOptions[0]
	}

	reader := bufio.NewReader(i.reader())
	for {
		fmt.Fprintf(i.writer(), "%s (%s): ", prompt, strings.Join(validOptions, "/"))
		input, err := reader.ReadString('\n')
		choice := strings.TrimSpace(strings.ToLower(input))

		for _, option := range validOptions {
			if choice == option {
				return choice
			}
		}
		if err != nil {
			return validOptions[0]
		}
		fmt.Fprintf(i.writer(), "Invalid option. Please choose from: %s\n", strings.Join(validOptions, ", "))
	}
}

// AskConfirmation asks user for yes/no confirmation
func (i *InputUtils) AskConfirmation(message string, force bool) bool {
	if force {
		return true
	}
	fmt.Fprintf(i.writer(), "%s (y/N): ", message)
	response, _ := bufio.NewReader(i.reader()).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// ParseAssignments splits "key=value" arguments. Keys are trimmed, values
// are kept as given.
func ParseAssignments(args []string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		pairs = append(pairs, [2]string{key, value})
	}
	return pairs, nil
}

// ParseRow builds a row from "column=value" arguments.
func ParseRow(args []string) (tables.Row, error) {
	pairs, err := ParseAssignments(args)
	if err != nil {
		return tables.Row{}, err
	}
	kv := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		kv = append(kv, p[0], p[1])
	}
	return tables.NewRow(kv...), nil
}

// ParseRenames builds an old to new name mapping from "old=new" arguments.
func ParseRenames(args []string) (map[string]string, error) {
	pairs, err := ParseAssignments(args)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if _, dup := mapping[p[0]]; dup {
			return nil, fmt.Errorf("%q is renamed more than once", p[0])
		}
		mapping[p[0]] = p[1]
	}
	return mapping, nil
}
