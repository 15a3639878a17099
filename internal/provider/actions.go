package provider

import (
	"github.com/rproc-labs/rproc/internal/rscript"
	"github.com/rproc-labs/rproc/internal/rutils"
)

// ActionID identifies a provider action.
type ActionID string

const (
	ActionCreate ActionID = "create"
	ActionFetch  ActionID = "fetch"
	ActionEdit   ActionID = "edit"
	ActionDelete ActionID = "delete"
)

// Action describes an action the host can offer for the provider. Command is
// the CLI command that performs it.
type Action struct {
	ID      ActionID
	Name    string
	Command string
}

// Actions returns the provider-level actions.
func (p *RProvider) Actions() []Action {
	return []Action{
		{ID: ActionCreate, Name: "Create new R script", Command: "create"},
		{ID: ActionFetch, Name: "Get R scripts from on-line scripts collection", Command: "fetch"},
	}
}

// ContextMenuActions returns the actions available for alg. Edit and delete
// are only offered for scripts stored in a user scripts folder.
func (p *RProvider) ContextMenuActions(alg *rscript.Algorithm) []Action {
	if alg == nil || !rutils.IsUserScript(p.Store(), alg.SourcePath) {
		return nil
	}
	return []Action{
		{ID: ActionEdit, Name: "Edit script", Command: "edit"},
		{ID: ActionDelete, Name: "Delete script", Command: "delete"},
	}
}
