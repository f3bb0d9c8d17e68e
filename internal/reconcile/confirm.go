package reconcile

import "context"

// Step names one repair action.
type Step string

const (
	StepRename     Step = "rename"
	StepUpdateCode Step = "update-code"
	StepRegister   Step = "register"
	StepSimplifyID Step = "simplify-id"
	StepFolders    Step = "folders"
	StepSidecar    Step = "sidecar"
	StepPath       Step = "path"
)

// Confirmer is asked before every repair step.
type Confirmer interface {
	Confirm(ctx context.Context, step Step, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, step Step, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, step Step, prompt string) bool {
	return f(ctx, step, prompt)
}

// AcceptAll confirms every step.
type AcceptAll struct{}

func (AcceptAll) Confirm(context.Context, Step, string) bool { return true }

// DeclineAll declines every step.
type DeclineAll struct{}

func (DeclineAll) Confirm(context.Context, Step, string) bool { return false }
