// pkg/interaction/input.go

package interaction

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptInput displays a prompt and reads user input.
func PromptInput(prompt, defaultVal string) string {
	return promptInput(bufio.NewReader(os.Stdin), prompt, defaultVal)
}

func promptInput(r *bufio.Reader, prompt, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Printf("%s: ", prompt)
	}
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

// PromptRequired prompts until a non-empty string is entered. When stdin
// is closed it gives up and returns the empty string; callers treat that
// as a cancel.
func PromptRequired(label string) string {
	return promptRequired(bufio.NewReader(os.Stdin), label)
}

func promptRequired(r *bufio.Reader, label string) string {
	for {
		fmt.Printf("%s: ", label)
		text, err := r.ReadString('\n')
		text = strings.TrimSpace(text)
		if text != "" {
			return text
		}
		if err != nil {
			fmt.Println()
			return ""
		}
		fmt.Println("Input cannot be empty.")
	}
}

// PromptSecret asks the user for a hidden input (no terminal echo).
func PromptSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("secret prompt failed: no terminal available")
	}

	fmt.Print(prompt + ": ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
