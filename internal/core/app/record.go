package app

import (
	"semresolve/internal/data/store"
)

// record converts a finished run into the rows persisted by the store.
func (r *Result) record(projectKey string) store.Record {
	run := store.Run{
		ID:          r.RunID,
		ProjectKey:  projectKey,
		StartedAt:   r.StartedAt,
		Duration:    r.Duration,
		Files:       r.Files,
		ParseErrors: len(r.ParseErrors),
		Incomplete:  r.Incomplete,
	}
	rec := store.Record{Run: run}
	if r.Analysis == nil {
		return rec
	}

	a := r.Analysis
	rec.Run.Types = a.Types
	rec.Run.Methods = a.Overrides.Methods
	rec.Run.Overridden = a.Overrides.Overridden
	rec.Run.Calls = a.Usages.Calls
	rec.Run.Resolved = a.Usages.Resolved
	rec.Run.ItemErrors = a.Overrides.ItemErrors + a.Usages.ItemErrors
	rec.Overrides = a.Model.Signatures()

	for _, ref := range a.Model.Methods() {
		for _, call := range a.Model.Usages(ref.Decl) {
			path, _ := a.Model.CallPath(call)
			pos := call.Pos()
			rec.Usages = append(rec.Usages, store.Usage{
				Target: ref.Signature,
				Path:   path,
				Line:   pos.Line,
				Column: pos.Column,
			})
		}
	}
	for _, e := range a.Model.Hierarchy().Edges() {
		rec.Edges = append(rec.Edges, store.Edge{Ancestor: e.Ancestor, Child: e.Child})
	}
	return rec
}
