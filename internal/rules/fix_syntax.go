package rules

import (
	"strings"

	"mend/internal/ast"
	"mend/internal/correction"
)

func matchProblem(cx *correction.Context) (*correction.ProblemLocation, bool) {
	return cx.Problem, cx.Problem != nil
}

func addClosingQuote(cx *correction.Context, p *correction.ProblemLocation) []*correction.Draft {
	quote := `"`
	if strings.HasPrefix(p.Arg(0), "'") {
		quote = "'"
	}
	d := cx.NewDraft("Insert missing quote")
	d.Edit.InsertText(p.End(), quote)
	return single(d)
}

func insertSemicolon(cx *correction.Context, p *correction.ProblemLocation) []*correction.Draft {
	d := cx.NewDraft("Insert missing ';'")
	d.Edit.InsertText(p.Offset, ";")
	return single(d)
}

func matchRemoveSemicolon(cx *correction.Context) (ast.NodeID, bool) {
	id := problemNode(cx, ast.KindEmpty, ast.KindEmptyDecl)
	if id == ast.NoNodeID {
		return ast.NoNodeID, false
	}
	return id, cx.Tree.Location(id).Info().List
}

func removeSemicolon(cx *correction.Context, id ast.NodeID) []*correction.Draft {
	d := cx.NewDraft("Remove semicolon")
	d.Edit.Remove(id)
	return single(d)
}
