package lsp

import (
	"context"
	"encoding/json"
	"strings"

	"mend/internal/correction"
	"mend/internal/driver"
)

const (
	kindQuickFix        = "quickfix"
	kindRefactorRewrite = "refactor.rewrite"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	text, open := s.openDocs[uri]
	s.mu.Unlock()
	path := uriToPath(uri)
	if _, ok := driver.LangOf(path); !open || !ok {
		return s.sendResponse(msg.ID, []codeAction{})
	}
	ctx := s.context()
	a, err := s.analyze(ctx, path, []byte(text))
	if err != nil {
		return s.sendError(msg.ID, -32603, err.Error())
	}
	return s.sendResponse(msg.ID, s.codeActions(ctx, uri, a, &params))
}

// wantedKinds reads context.only: "quickfix" selects fixes, "refactor" and
// "refactor.rewrite" select assists. An empty list selects both.
func wantedKinds(only []string) (fixes, assists bool) {
	if len(only) == 0 {
		return true, true
	}
	for _, k := range only {
		if k == "" {
			continue
		}
		if strings.HasPrefix(kindQuickFix, k) {
			fixes = true
		}
		if strings.HasPrefix(kindRefactorRewrite, k) {
			assists = true
		}
	}
	return fixes, assists
}

// codeActions turns the proposals at the requested range into code actions,
// best first. The first quick-fix is marked preferred.
func (s *Server) codeActions(ctx context.Context, uri string, a *driver.Analysis, params *codeActionParams) []codeAction {
	start := offsetForPositionInFile(a.File, params.Range.Start)
	end := offsetForPositionInFile(a.File, params.Range.End)
	if end < start {
		start, end = end, start
	}
	fixes, assists := wantedKinds(params.Context.Only)
	req := a.Request(start, end-start, assists)
	if !fixes {
		req.Problems = nil
	}
	res := s.catalogue.Proposals(ctx, req, s.settings(a.File.Content))
	if s.currentTrace() {
		for _, f := range res.Failures {
			s.logf("rule %s failed: %v", f.RuleID, f.Err)
		}
	}

	out := make([]codeAction, 0, len(res.Proposals))
	preferred := false
	for i := range res.Proposals {
		p := &res.Proposals[i]
		act := codeAction{Title: p.Label, Kind: kindRefactorRewrite, Edit: workspaceEditFor(uri, a, p)}
		if p.Kind == correction.KindFix {
			act.Kind = kindQuickFix
			act.Diagnostics = matchingDiagnostics(params.Context.Diagnostics, p.Code.ID())
			if !preferred {
				act.IsPreferred = true
				preferred = true
			}
		}
		out = append(out, act)
	}
	return out
}

// workspaceEditFor maps the edits of p to LSP ranges of the files they touch.
func workspaceEditFor(uri string, a *driver.Analysis, p *correction.Proposal) *workspaceEdit {
	we := &workspaceEdit{Changes: make(map[string][]textEdit)}
	for _, e := range p.Edits {
		f := a.FileSet.Get(e.Span.File)
		if f == nil {
			continue
		}
		target := uri
		if f.ID != a.File.ID {
			target = pathToURI(f.Path)
		}
		we.Changes[target] = append(we.Changes[target], textEdit{Range: rangeForSpan(f, e.Span), NewText: e.NewText})
	}
	return we
}

func matchingDiagnostics(ds []lspDiagnostic, code string) []lspDiagnostic {
	var out []lspDiagnostic
	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
