package backend

import (
	"maps"
	"strconv"
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/allisson/secretbroker/internal/errors"
	customValidation "github.com/allisson/secretbroker/internal/validation"
)

// ErrInvalidAnswer indicates an answer the current setup question does not accept.
var ErrInvalidAnswer = errors.Wrap(errors.ErrInvalidInput, "invalid setup answer")

// Setup option keys. They double as the environment variable names the
// result is persisted under.
const (
	OptionProvider  = "BACKEND_PROVIDER"
	OptionKeeperURI = "BACKEND_KEEPER_URI"
	OptionDirectory = "BACKEND_DIRECTORY"
	OptionTokenTTL  = "TOKEN_TTL_SECONDS"
)

// generateAnswer asks the wizard to create a fresh local keeper key.
const generateAnswer = "generate"

// Choice is one allowed answer to a SetupQuestion.
type Choice struct {
	Value string
	Label string
}

// SetupQuestion asks for one configuration value. When Choices is empty the
// answer is free-form; an empty answer selects Default.
type SetupQuestion struct {
	Key     string
	Prompt  string
	Default string
	Choices []Choice
}

// SetupResult holds the options to merge into the persisted configuration.
type SetupResult struct {
	Options map[string]string
}

// SetupState is the state of a setup run: either AwaitingAnswer or Complete.
type SetupState interface {
	setupState()
}

// AwaitingAnswer is a setup run paused on Question.
type AwaitingAnswer struct {
	Question SetupQuestion

	step    int
	answers map[string]string
}

// Complete is a finished setup run.
type Complete struct {
	Result SetupResult
}

func (AwaitingAnswer) setupState() {}
func (Complete) setupState()       {}

// setupStep produces the question for a step, or nil to skip it given the
// answers so far.
type setupStep func(answers map[string]string) *SetupQuestion

// Wizard drives backend setup as a state machine: Start yields the first
// state and SubmitAnswer moves from one AwaitingAnswer to the next state.
// States are values; a Wizard holds no per-run data and may drive several
// runs at once.
type Wizard struct {
	steps       []setupStep
	generateKey func() (string, error)
}

// NewWizard creates the backend setup wizard. generateKey produces a new local
// keeper URL when the user answers "generate" to the keeper question;
// defaultDir is offered for the keeper storage directory.
func NewWizard(generateKey func() (string, error), defaultDir string) *Wizard {
	keeperOnly := func(answers map[string]string) bool {
		return answers[OptionProvider] == ProviderKeeper
	}

	return &Wizard{
		generateKey: generateKey,
		steps: []setupStep{
			func(map[string]string) *SetupQuestion {
				return &SetupQuestion{
					Key:     OptionProvider,
					Prompt:  "Where should secrets be stored?",
					Default: ProviderKeeper,
					Choices: []Choice{
						{Value: ProviderKeeper, Label: "Sealed files on disk (local key or KMS)"},
						{Value: ProviderMemory, Label: "Process memory only (lost on exit)"},
					},
				}
			},
			func(answers map[string]string) *SetupQuestion {
				if !keeperOnly(answers) {
					return nil
				}
				return &SetupQuestion{
					Key:     OptionKeeperURI,
					Prompt:  `Keeper URL (base64key://, hashivault://, awskms://, gcpkms://, azurekeyvault://), or "generate" for a new local key`,
					Default: generateAnswer,
				}
			},
			func(answers map[string]string) *SetupQuestion {
				if !keeperOnly(answers) {
					return nil
				}
				return &SetupQuestion{
					Key:     OptionDirectory,
					Prompt:  "Directory for sealed secrets",
					Default: defaultDir,
				}
			},
			func(map[string]string) *SetupQuestion {
				return &SetupQuestion{
					Key:     OptionTokenTTL,
					Prompt:  "Token lifetime in seconds",
					Default: "60",
				}
			},
		},
	}
}

// Start returns the initial state.
func (w *Wizard) Start() SetupState {
	return w.advance(0, map[string]string{})
}

// SubmitAnswer records answer for state's question and returns the next
// state. An invalid answer returns ErrInvalidAnswer and the caller may submit
// again against the same state.
func (w *Wizard) SubmitAnswer(state AwaitingAnswer, answer string) (SetupState, error) {
	question := state.Question
	value := strings.TrimSpace(answer)
	if value == "" {
		value = question.Default
	}

	value, err := w.accept(question, value)
	if err != nil {
		return state, err
	}

	answers := maps.Clone(state.answers)
	if answers == nil {
		answers = map[string]string{}
	}
	answers[question.Key] = value
	return w.advance(state.step+1, answers), nil
}

func (w *Wizard) advance(step int, answers map[string]string) SetupState {
	for ; step < len(w.steps); step++ {
		if question := w.steps[step](answers); question != nil {
			return AwaitingAnswer{Question: *question, step: step, answers: answers}
		}
	}
	return Complete{Result: SetupResult{Options: answers}}
}

func (w *Wizard) accept(question SetupQuestion, value string) (string, error) {
	if len(question.Choices) > 0 {
		for _, choice := range question.Choices {
			if strings.EqualFold(choice.Value, value) {
				return choice.Value, nil
			}
		}
		return "", errors.Wrapf(ErrInvalidAnswer, "%s must be one of the listed choices", question.Key)
	}

	switch question.Key {
	case OptionKeeperURI:
		if value == generateAnswer {
			return w.generateKey()
		}
		if err := validation.Validate(value, customValidation.KeeperURI); err != nil {
			return "", errors.Wrap(ErrInvalidAnswer, err.Error())
		}
	case OptionTokenTTL:
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			return "", errors.Wrap(ErrInvalidAnswer, "token lifetime must be a positive number of seconds")
		}
	default:
		if err := validation.Validate(value, validation.Required); err != nil {
			return "", errors.Wrapf(ErrInvalidAnswer, "%s is required", question.Key)
		}
	}
	return value, nil
}
