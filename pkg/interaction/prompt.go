// pkg/interaction/prompt.go

package interaction

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// PromptSelect displays numbered options and returns the selected value.
// A closed stdin returns the empty string; menu loops treat that as exit.
func PromptSelect(prompt string, options []string) string {
	return promptSelect(bufio.NewReader(os.Stdin), prompt, options)
}

func promptSelect(r *bufio.Reader, prompt string, options []string) string {
	fmt.Println(prompt)
	for i, option := range options {
		fmt.Printf("  %d) %s\n", i+1, option)
	}

	for {
		fmt.Print("Select: ")
		choice, err := r.ReadString('\n')
		choice = strings.TrimSpace(choice)

		idx, convErr := strconv.Atoi(choice)
		if convErr == nil && idx >= 1 && idx <= len(options) {
			zap.L().Debug("User selected option", zap.Int("index", idx), zap.String("value", options[idx-1]))
			return options[idx-1]
		}

		if err != nil {
			zap.L().Debug("Input closed during selection", zap.Error(err))
			fmt.Println()
			return ""
		}
		fmt.Println("Invalid selection. Please try again.")
	}
}

// PromptYesNo asks a yes/no question; empty input takes the default, a
// closed stdin declines.
func PromptYesNo(prompt string, defaultYes bool) bool {
	return promptYesNo(bufio.NewReader(os.Stdin), prompt, defaultYes)
}

func promptYesNo(r *bufio.Reader, prompt string, defaultYes bool) bool {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}

	fmt.Printf("%s %s: ", prompt, suffix)
	input, err := r.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))

	switch {
	case input == "" && err != nil:
		fmt.Println()
		return false
	case input == "":
		return defaultYes
	case input == "y" || input == "yes":
		return true
	default:
		return false
	}
}

// PressEnterToContinue blocks until the user acknowledges.
func PressEnterToContinue() {
	fmt.Print("\nPress Enter to continue...")
	reader := bufio.NewReader(os.Stdin)
	_, _ = reader.ReadString('\n')
}
