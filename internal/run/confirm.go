package run

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// confirm asks a yes/no question: a huh form on a terminal, plain line
// reads otherwise.
func (s *session) confirm(question string) (bool, error) {
	if s.streams.interactive() {
		var ok bool
		err := huh.NewConfirm().
			Title(question).
			Affirmative("Yes").
			Negative("No").
			Value(&ok).
			Run()
		if err != nil {
			return false, fmt.Errorf("confirm: %w", err)
		}
		return ok, nil
	}
	return confirmLine(bufio.NewReader(s.streams.In), s.streams, question)
}

func confirmLine(reader *bufio.Reader, streams Streams, question string) (bool, error) {
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprintf(streams.Out, "%s [y/N]: ", question)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Fprintln(streams.Out, "Please answer y or n.")
	}
	return false, fmt.Errorf("invalid confirmation")
}
