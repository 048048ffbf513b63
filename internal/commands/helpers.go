package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// RecentLogLines returns the last maxLines non-empty lines of the log file
func RecentLogLines(logPath string, maxLines int) []string {
	if logPath == "" {
		return nil
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}
	}

	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines
}

// Confirm asks a yes/no question on out and reads the answer from in.
// Anything but y or yes counts as no.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
