package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo. A newline is printed after
// the read to keep the UI tidy.
func GetPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// GetSeverity prompts for a severity score and validates it is an integer
// in [0, max]. An empty line means zero.
func GetSeverity(reader *bufio.Reader, prompt string, max int, w io.Writer) (int, error) {
	text, err := GetSimpleText(reader, fmt.Sprintf("%s (0-%d)", prompt, max), w)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if n < 0 || n > max {
		return 0, fmt.Errorf("severity must be between 0 and %d", max)
	}
	return n, nil
}

// GetDate prompts for a date in YYYY-MM-DD form. An empty line means today.
func GetDate(reader *bufio.Reader, prompt string, w io.Writer) (time.Time, error) {
	text, err := GetSimpleText(reader, prompt+" (YYYY-MM-DD, empty for today)", w)
	if err != nil {
		return time.Time{}, err
	}
	if text == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", text)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: expected YYYY-MM-DD", text)
	}
	return t, nil
}

// GetCommaList prompts for a comma-separated list and returns the trimmed,
// non-empty items. An empty line yields an empty slice.
func GetCommaList(reader *bufio.Reader, prompt string, w io.Writer) ([]string, error) {
	text, err := GetSimpleText(reader, prompt+" (comma-separated, empty for none)", w)
	if err != nil {
		return nil, err
	}

	items := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			items = append(items, part)
		}
	}
	return items, nil
}
