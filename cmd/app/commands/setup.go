package commands

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/allisson/secretbroker/internal/backend"
)

// SetupWizard is the backend setup state machine.
type SetupWizard interface {
	Start() backend.SetupState
	SubmitAnswer(state backend.AwaitingAnswer, answer string) (backend.SetupState, error)
}

// RunSetup walks the operator through the setup questions and merges the
// answers into the dotenv file at envPath. An invalid answer is reported and
// the same question is asked again.
func RunSetup(wizard SetupWizard, envPath string, logger *slog.Logger, streams IOTuple) error {
	scanner := bufio.NewScanner(streams.Reader)
	state := wizard.Start()

	for {
		switch s := state.(type) {
		case backend.AwaitingAnswer:
			renderQuestion(streams.Writer, s.Question)
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read answer: %w", err)
				}
				return fmt.Errorf("setup aborted: no answer for %s", s.Question.Key)
			}

			next, err := wizard.SubmitAnswer(s, scanner.Text())
			if err != nil {
				_, _ = fmt.Fprintf(streams.Writer, "  %v\n", err)
				continue
			}
			state = next

		case backend.Complete:
			if err := backend.MergeSetupResult(envPath, s.Result); err != nil {
				return fmt.Errorf("failed to save setup: %w", err)
			}
			logger.Info("setup saved", slog.String("path", envPath))

			keys := make([]string, 0, len(s.Result.Options))
			for key := range s.Result.Options {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			_, _ = fmt.Fprintf(streams.Writer, "\nSaved %d settings to %s\n", len(keys), envPath)
			for _, key := range keys {
				_, _ = fmt.Fprintf(streams.Writer, "  %s\n", key)
			}
			return nil

		default:
			return fmt.Errorf("unexpected setup state %T", state)
		}
	}
}

func renderQuestion(w io.Writer, question backend.SetupQuestion) {
	_, _ = fmt.Fprintf(w, "%s\n", question.Prompt)
	for _, choice := range question.Choices {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", choice.Value, choice.Label)
	}
	if question.Default != "" {
		_, _ = fmt.Fprintf(w, "[%s] ", question.Default)
	}
	_, _ = fmt.Fprint(w, "> ")
}
