package llm

import (
	"fmt"
	"strings"
)

// CommandPrefix marks a response whose tail is a suggested shell command.
// The REPL pre-fills the next input line with everything after it.
const CommandPrefix = "COMMAND: "

// pipeTemplate is the fixed wrapper for in-pipeline invocations. It asks
// the service to answer in plain language, or to emit a single
// COMMAND-prefixed line when a shell command is the best answer.
const pipeTemplate = `You are an assistant embedded in a Unix command-line shell.
The user piped the following input into you:

%s

The user's instruction is: %s

If the best response is a shell command for the user to run, reply with a
single line of the form "COMMAND: <command>" and nothing else. Otherwise
reply with a short plain-language answer.`

// PipePrompt builds the wrapped prompt for an LLM stage fed by a pipeline.
func PipePrompt(prompt, input string) string {
	return fmt.Sprintf(pipeTemplate, strings.TrimRight(input, "\n"), prompt)
}

// Suggestion extracts the command from a COMMAND-prefixed response.
func Suggestion(output string) (string, bool) {
	if !strings.HasPrefix(output, strings.TrimRight(CommandPrefix, " ")) {
		return "", false
	}
	rest := strings.TrimPrefix(output, strings.TrimRight(CommandPrefix, " "))
	rest = strings.TrimPrefix(rest, " ")
	return rest, rest != ""
}
