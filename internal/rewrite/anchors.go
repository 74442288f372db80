package rewrite

import (
	"bytes"
	"cmp"
	"slices"
	"strings"

	"mend/internal/ast"
)

// isLineList reports whether elements of p are laid out one per line.
func isLineList(p ast.Prop) bool {
	switch p {
	case ast.BlockStatements, ast.SwitchStatements, ast.TypeBody, ast.UnitTypes, ast.UnitImports:
		return true
	default:
		return false
	}
}

func (c *compiler) span(id ast.NodeID) (start, end uint32) {
	sp := c.t.Span(id)
	return sp.Start, sp.End
}

// startsLine reports whether only indentation precedes off on its line.
func (c *compiler) startsLine(off uint32) bool {
	for i := c.file.LineStartOf(off); i < off; i++ {
		if b := c.content[i]; b != ' ' && b != '\t' {
			return false
		}
	}
	return true
}

// endsLine reports whether only blanks or a line comment follow off on its line.
func (c *compiler) endsLine(off uint32) bool {
	rest := bytes.TrimLeft(c.content[off:c.file.LineEndOf(off)], " \t\r")
	return len(rest) == 0 || bytes.HasPrefix(rest, []byte("//"))
}

// wholeLines extends [start, end) to the full lines it occupies, including
// the terminating newline.
func (c *compiler) wholeLines(start, end uint32) (uint32, uint32) {
	s := c.file.LineStartOf(start)
	e := c.file.LineEndOf(end)
	if e < c.file.Len() {
		e++
	}
	return s, e
}

func (c *compiler) indent(off uint32) string {
	return c.file.Indentation(off)
}

// skipTo skips blanks and comments from off and returns the offset of ch
// when it is the next significant byte.
func (c *compiler) skipTo(off uint32, ch byte) (uint32, bool) {
	s := c.content
	i := int(off)
	for i < len(s) {
		switch {
		case s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r':
			i++
		case bytes.HasPrefix(s[i:], []byte("//")):
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case bytes.HasPrefix(s[i:], []byte("/*")):
			j := bytes.Index(s[i+2:], []byte("*/"))
			if j < 0 {
				return 0, false
			}
			i += j + 4
		case s[i] == ch:
			return u32(i), true
		default:
			return 0, false
		}
	}
	return 0, false
}

// leadStart walks back from off over blanks and the keyword of lead
// (" else ", " throws ", " = ") and returns where the lead begins.
func (c *compiler) leadStart(off uint32, lead string) uint32 {
	s := c.content
	p := int(off)
	back := func() {
		for p > 0 && (s[p-1] == ' ' || s[p-1] == '\t' || s[p-1] == '\n' || s[p-1] == '\r') {
			p--
		}
	}
	back()
	if kw := strings.TrimSpace(lead); kw != "" && p >= len(kw) && string(s[p-len(kw):p]) == kw {
		p -= len(kw)
		back()
	}
	return u32(p)
}

// separator returns the text between list elements next to element near:
// taken from the source when the list already has two elements.
func (c *compiler) separator(key slotKey, elems []ast.NodeID, near int) string {
	info := key.prop.Info()
	if isLineList(key.prop) {
		s, _ := c.span(elems[near])
		if !c.startsLine(s) {
			return " "
		}
		nl := "\n"
		if key.prop == ast.UnitTypes {
			nl = "\n\n"
		} else if len(elems) > 1 {
			k := min(near, len(elems)-2)
			_, e0 := c.span(elems[k])
			s1, _ := c.span(elems[k+1])
			if bytes.Count(c.content[e0:s1], []byte("\n")) > 1 {
				nl = "\n\n"
			}
		}
		return nl + c.indent(s)
	}
	if len(elems) > 1 && info.Sep != "" {
		k := min(near, len(elems)-2)
		_, e0 := c.span(elems[k])
		s1, _ := c.span(elems[k+1])
		between := string(c.content[e0:s1])
		if strings.TrimSpace(between) == strings.TrimSpace(info.Sep) {
			return between
		}
	}
	return info.Sep
}

func (c *compiler) switchDeeper(key slotKey) func(ast.NodeID) bool {
	if key.prop != ast.SwitchStatements {
		return nil
	}
	return func(id ast.NodeID) bool {
		k := c.t.Kind(id)
		if k == ast.KindPlaceholder {
			k = c.t.Node(id).Tag
		}
		return k != ast.KindSwitchCase
	}
}

// listRegions turns the removals and insertions of one list property into
// regions. Removed runs take their separator with them; insertions reuse
// the separator found in the source.
func (c *compiler) listRegions(key slotKey, le *listEdit) ([]region, error) {
	if key.prop == ast.NewArrayDims && len(le.ins) > 0 {
		return nil, usage("insert", key.owner, "cannot insert array dimensions")
	}
	elems := c.t.List(key.owner, key.prop)
	n := len(elems)
	if n == 0 {
		r, err := c.emptyListRegion(key, le.ins)
		if err != nil {
			return nil, err
		}
		return []region{r}, nil
	}

	kept := make([]bool, n)
	nk := 0
	for i, e := range elems {
		if le.removed[e] == nil {
			kept[i] = true
			nk++
		}
	}
	ins := slices.Clone(le.ins)
	slices.SortStableFunc(ins, func(a, b insertion) int {
		return cmp.Or(cmp.Compare(a.index, b.index), cmp.Compare(a.seq, b.seq))
	})

	if nk == 0 {
		first, _ := c.span(elems[0])
		_, last := c.span(elems[n-1])
		if len(ins) > 0 {
			var tb textBuf
			err := c.renderList(&tb, ins, c.separator(key, elems, 0), c.indent(first), "", "", nil)
			return []region{tb.region(first, last, le.seq, key.owner)}, err
		}
		return []region{c.removeAll(key, elems, le.seq)}, nil
	}

	var out []region
	lines := isLineList(key.prop)
	for i := 0; i < n; {
		if kept[i] {
			i++
			continue
		}
		j := i
		for j+1 < n && !kept[j+1] {
			j++
		}
		first, _ := c.span(elems[i])
		_, last := c.span(elems[j])
		r := region{seq: le.removed[elems[i]].seq, node: elems[i]}
		switch {
		case lines && c.startsLine(first) && c.endsLine(last):
			r.start, r.end = c.wholeLines(first, last)
		case i > 0:
			_, r.start = c.span(elems[i-1])
			r.end = last
		default:
			r.start = first
			r.end, _ = c.span(elems[j+1])
		}
		out = append(out, r)
		i = j + 1
	}

	for g := 0; g < len(ins); {
		h := g
		for h+1 < len(ins) && ins[h+1].index == ins[g].index {
			h++
		}
		group := ins[g : h+1]
		k := group[0].index
		prev := -1
		for i := k - 1; i >= 0; i-- {
			if kept[i] {
				prev = i
				break
			}
		}
		var tb textBuf
		if prev >= 0 {
			sep := c.separator(key, elems, prev)
			s, e := c.span(elems[prev])
			if err := c.renderList(&tb, group, sep, c.indent(s), sep, "", nil); err != nil {
				return nil, err
			}
			out = append(out, tb.region(e, e, group[0].seq, key.owner))
		} else {
			next := k
			for !kept[next] {
				next++
			}
			sep := c.separator(key, elems, next)
			s, _ := c.span(elems[next])
			if err := c.renderList(&tb, group, sep, c.indent(s), "", sep, nil); err != nil {
				return nil, err
			}
			out = append(out, tb.region(s, s, group[0].seq, key.owner))
		}
		g = h + 1
	}
	return out, nil
}

// removeAll removes every element of a list, with the lead that introduces
// it (" throws A, B").
func (c *compiler) removeAll(key slotKey, elems []ast.NodeID, seq int) region {
	first, _ := c.span(elems[0])
	_, last := c.span(elems[len(elems)-1])
	r := region{start: first, end: last, seq: seq, node: elems[0]}
	switch info := key.prop.Info(); {
	case isLineList(key.prop):
		if c.startsLine(first) && c.endsLine(last) {
			r.start, r.end = c.wholeLines(first, last)
		}
	case info.Lead != "":
		r.start = c.leadStart(first, info.Lead)
	}
	return r
}

// removeSlotRegion removes an optional single child with its lead.
func (c *compiler) removeSlotRegion(op *nodeOp) (region, error) {
	t := c.t
	id := op.target
	owner := t.Parent(id)
	start, end := c.span(id)
	r := region{start: start, end: end, seq: op.seq, node: id}
	switch loc := t.Location(id); loc {
	case ast.MethodReturnType:
		r.end, _ = c.span(t.Child(owner, ast.MethodName))
	case ast.CallReceiver:
		r.end, _ = c.span(t.Child(owner, ast.CallName))
	case ast.UnitPackage:
		r.start, r.end = c.wholeLines(start, end)
	case ast.MethodBody:
		r.start = c.leadStart(start, "")
		r.text = ";"
	case ast.ForCondition:
	case ast.CaseExpr:
		r.end = end
		r.start, _ = c.span(owner)
		r.text = "default"
		if colon, ok := c.skipTo(end, ':'); ok {
			r.end = colon
		}
	default:
		r.start = c.leadStart(start, loc.Info().Lead)
	}
	return r, nil
}

// setRegion fills an empty optional slot.
func (c *compiler) setRegion(key slotKey, in insertion) (region, error) {
	t := c.t
	owner := key.owner
	ostart, oend := c.span(owner)
	r, err := c.print(in.node, c.indent(ostart))
	if err != nil {
		return region{}, err
	}
	var tb textBuf
	at := func(off uint32, before, after string) (region, error) {
		tb.str(before)
		tb.add(r)
		tb.str(after)
		return tb.region(off, off, in.seq, owner), nil
	}
	endOf := func(id ast.NodeID) uint32 {
		_, e := c.span(id)
		return e
	}
	startOf := func(id ast.NodeID) uint32 {
		s, _ := c.span(id)
		return s
	}
	switch key.prop {
	case ast.IfElse:
		return at(endOf(t.Child(owner, ast.IfThen)), " else ", "")
	case ast.TryFinally:
		last := t.Child(owner, ast.TryBody)
		if cs := t.List(owner, ast.TryCatches); len(cs) > 0 {
			last = cs[len(cs)-1]
		}
		return at(endOf(last), " finally ", "")
	case ast.FragmentInit, ast.TypeSuperclass, ast.NewArrayInit:
		anchor := owner
		if key.prop == ast.TypeSuperclass {
			anchor = t.Child(owner, ast.TypeName)
		}
		return at(endOf(anchor), key.prop.Info().Lead, "")
	case ast.ReturnExpr:
		return at(ostart+u32(len("return")), " ", "")
	case ast.BreakLabel:
		return at(ostart+u32(len("break")), " ", "")
	case ast.ContinueLabel:
		return at(ostart+u32(len("continue")), " ", "")
	case ast.MethodReturnType:
		return at(startOf(t.Child(owner, ast.MethodName)), "", " ")
	case ast.CallReceiver:
		return at(startOf(t.Child(owner, ast.CallName)), "", ".")
	case ast.UnitPackage:
		return at(0, "", "\n\n")
	case ast.MethodBody:
		if c.content[oend-1] != ';' {
			break
		}
		tb.str(" ")
		tb.add(r)
		return tb.region(c.leadStart(oend-1, ""), oend, in.seq, owner), nil
	case ast.CaseExpr:
		tb.str("case ")
		tb.add(r)
		return tb.region(ostart, ostart+u32(len("default")), in.seq, owner), nil
	case ast.ForCondition:
		open, ok := c.skipTo(ostart+u32(len("for")), '(')
		if !ok {
			break
		}
		from := open + 1
		if init := t.List(owner, ast.ForInit); len(init) > 0 {
			from = endOf(init[len(init)-1])
		}
		if semi, ok := c.skipTo(from, ';'); ok {
			return at(semi+1, " ", "")
		}
	}
	return region{}, usage("set", owner, "no anchor for %s", key.prop)
}

// emptyListRegion inserts the first elements of an empty list.
func (c *compiler) emptyListRegion(key slotKey, ins []insertion) (region, error) {
	t := c.t
	owner := key.owner
	ostart, oend := c.span(owner)
	seq := ins[0].seq
	var tb textBuf
	endOf := func(id ast.NodeID) uint32 {
		_, e := c.span(id)
		return e
	}
	inParens := func(open uint32, ok bool, closeAt uint32) (region, error) {
		if !ok || closeAt <= open || c.content[closeAt] != ')' {
			return region{}, usage("insert", owner, "no parentheses for %s", key.prop)
		}
		if err := c.renderList(&tb, ins, key.prop.Info().Sep, c.indent(ostart), "", "", nil); err != nil {
			return region{}, err
		}
		return tb.region(open+1, closeAt, seq, owner), nil
	}
	point := func(off uint32, sep, indent, prefix, suffix string) (region, error) {
		if err := c.renderList(&tb, ins, sep, indent, prefix, suffix, nil); err != nil {
			return region{}, err
		}
		return tb.region(off, off, seq, owner), nil
	}

	switch key.prop {
	case ast.BlockStatements, ast.SwitchStatements, ast.TypeBody:
		open, closeAt, ok := c.braces(key)
		if !ok {
			return region{}, usage("insert", owner, "no braces for %s", key.prop)
		}
		outer := c.indent(open)
		inner := outer + c.unit
		sep := "\n" + inner
		if key.prop == ast.TypeBody {
			sep = "\n\n" + inner
		}
		if err := c.renderList(&tb, ins, sep, inner, "\n"+inner, "\n"+outer, c.switchDeeper(key)); err != nil {
			return region{}, err
		}
		if len(bytes.TrimSpace(c.content[open+1:closeAt])) == 0 {
			return tb.region(open+1, closeAt, seq, owner), nil
		}
		return tb.region(closeAt, closeAt, seq, owner), nil
	case ast.ArrayInitElements:
		if err := c.renderList(&tb, ins, ", ", c.indent(ostart), " ", " ", nil); err != nil {
			return region{}, err
		}
		return tb.region(ostart+1, oend-1, seq, owner), nil
	case ast.MethodParams:
		open, ok := c.skipTo(endOf(t.Child(owner, ast.MethodName)), '(')
		closeAt, ok2 := c.skipTo(open+1, ')')
		return inParens(open, ok && ok2, closeAt)
	case ast.CallArgs:
		open, ok := c.skipTo(endOf(t.Child(owner, ast.CallName)), '(')
		return inParens(open, ok, oend-1)
	case ast.NewArgs:
		open, ok := c.skipTo(endOf(t.Child(owner, ast.NewType)), '(')
		return inParens(open, ok, oend-1)
	case ast.MethodThrows:
		from := endOf(t.Child(owner, ast.MethodName))
		if ps := t.List(owner, ast.MethodParams); len(ps) > 0 {
			from = endOf(ps[len(ps)-1])
		} else if open, ok := c.skipTo(from, '('); ok {
			from = open + 1
		}
		closeAt, ok := c.skipTo(from, ')')
		if !ok {
			return region{}, usage("insert", owner, "no parameter list")
		}
		return point(closeAt+1, ", ", c.indent(ostart), " throws ", "")
	case ast.TryCatches:
		return point(endOf(t.Child(owner, ast.TryBody)), " ", c.indent(ostart), " ", "")
	case ast.ForInit:
		open, ok := c.skipTo(ostart+u32(len("for")), '(')
		if !ok {
			return region{}, usage("insert", owner, "no for header")
		}
		return point(open+1, ", ", c.indent(ostart), "", "")
	case ast.ForUpdates:
		body, _ := c.span(t.Child(owner, ast.ForBody))
		p := c.leadStart(body, "")
		if p == 0 || c.content[p-1] != ')' {
			return region{}, usage("insert", owner, "no for header")
		}
		return point(p-1, ", ", c.indent(ostart), "", "")
	case ast.UnitImports:
		if pkg := t.Child(owner, ast.UnitPackage); pkg != ast.NoNodeID {
			return point(endOf(pkg), "\n", "", "\n\n", "")
		}
		return point(0, "\n", "", "", "\n\n")
	case ast.UnitTypes:
		end := c.file.Len()
		prefix := "\n"
		if end > 0 && c.content[end-1] != '\n' {
			prefix = "\n\n"
		}
		if end == 0 {
			prefix = ""
		}
		return point(end, "\n\n", "", prefix, "\n")
	}
	return region{}, usage("insert", owner, "no anchor for empty %s", key.prop)
}

// braces locates the braces delimiting the list of a block-like owner.
func (c *compiler) braces(key slotKey) (open, closeAt uint32, ok bool) {
	t := c.t
	owner := key.owner
	ostart, oend := c.span(owner)
	if oend == 0 || c.content[oend-1] != '}' {
		return 0, 0, false
	}
	closeAt = oend - 1
	switch key.prop {
	case ast.BlockStatements:
		return ostart, closeAt, c.content[ostart] == '{'
	case ast.TypeBody:
		anchor := t.Child(owner, ast.TypeName)
		if sup := t.Child(owner, ast.TypeSuperclass); sup != ast.NoNodeID {
			anchor = sup
		}
		_, e := c.span(anchor)
		open, ok = c.skipTo(e, '{')
		return open, closeAt, ok
	case ast.SwitchStatements:
		_, e := c.span(t.Child(owner, ast.SwitchExpr))
		paren, ok := c.skipTo(e, ')')
		if !ok {
			return 0, 0, false
		}
		open, ok = c.skipTo(paren+1, '{')
		return open, closeAt, ok
	}
	return 0, 0, false
}

// modsRegion rewrites the modifier keywords of decl.
func (c *compiler) modsRegion(decl ast.NodeID, m modOp) (region, bool) {
	n := c.t.Node(decl)
	sp := n.ModsSpan
	text := m.mods.String()
	r := region{start: sp.Start, end: sp.End, seq: m.seq, node: decl}
	switch {
	case sp.Empty() && text == "":
		return region{}, false
	case sp.Empty():
		r.text = text + " "
	case text == "":
		e := sp.End
		for e < c.file.Len() && (c.content[e] == ' ' || c.content[e] == '\t') {
			e++
		}
		r.end = e
	default:
		r.text = text
	}
	return r, true
}
