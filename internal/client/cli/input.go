package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// termReadPassword is swapped out in tests so no terminal is needed.
var termReadPassword = term.ReadPassword

// bodyTerminator ends a message body, like an empty line does.
const bodyTerminator = "."

// PromptField asks for one header-like value ("To: ", "Subject: ") and
// returns the answer trimmed. A last line without a newline still counts.
func PromptField(reader *bufio.Reader, label string, w io.Writer) (string, error) {
	fmt.Fprintf(w, "%s: ", label)

	line, err := reader.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
	default:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptPassword reads the account password from the terminal with echo
// off. Callers wipe the result with common.WipeByteArray once it has been
// sent.
func PromptPassword(w io.Writer) ([]byte, error) {
	fmt.Fprint(w, "Password: ")
	defer fmt.Fprintln(w)

	return termReadPassword(int(os.Stdin.Fd()))
}

// PromptBody reads a message body line by line. An empty line, a line
// holding only "." or the end of input finishes it.
func PromptBody(reader *bufio.Reader, label string, w io.Writer) (string, error) {
	fmt.Fprintf(w, "%s (finish with an empty line or %q):\n", label, bodyTerminator)

	var sb strings.Builder
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" || line == bodyTerminator {
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		if err != nil {
			break
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
