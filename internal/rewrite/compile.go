package rewrite

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"fortio.org/safecast"

	"mend/internal/ast"
	"mend/internal/format"
	"mend/internal/source"
)

// region replaces the original bytes [start, end) with text.
type region struct {
	start, end uint32
	text       string
	// ranges of printed nodes, relative to text
	ranges map[ast.NodeID]format.Range
	seq    int
	node   ast.NodeID
}

// scope limits region collection to the inside of one original node; the
// zero root means the whole file.
type scope struct {
	root       ast.NodeID
	start, end uint32
}

type appliedKey struct {
	kind byte // 'n' node op, 'i' insertion, 'm' modifiers, 't' raw text
	node ast.NodeID
	prop ast.Prop
	idx  int
}

type compiler struct {
	b       *Builder
	t       *ast.Tree
	file    *source.File
	content []byte
	unit    string
	ops     map[ast.NodeID]*nodeOp

	applied map[appliedKey]bool
	movePh  map[ast.NodeID]int
	moveSrc map[ast.NodeID]int
	active  map[ast.NodeID]bool
}

func newCompiler(b *Builder, ops map[ast.NodeID]*nodeOp) *compiler {
	return &compiler{
		b:       b,
		t:       b.tree,
		file:    b.base.File,
		content: b.base.File.Content,
		unit:    b.opt.Unit(),
		ops:     ops,
		applied: make(map[appliedKey]bool),
		movePh:  make(map[ast.NodeID]int),
		moveSrc: make(map[ast.NodeID]int),
		active:  make(map[ast.NodeID]bool),
	}
}

// Compile checks the recorded operations and turns them into text edits
// against the original file. Text outside the edited regions is kept byte
// for byte; a builder without operations compiles to an empty script.
func (b *Builder) Compile() (*Script, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	// первый проход только выясняет, какие move-плейсхолдеры использованы
	probe := newCompiler(b, b.ops)
	if _, err := probe.regions(probe.top()); err != nil {
		return nil, err
	}
	ops := maps.Clone(b.ops)
	for _, src := range slices.Sorted(maps.Keys(probe.moveSrc)) {
		// заменённый или удалённый источник и так исчезает из текста
		if _, ok := ops[src]; ok {
			continue
		}
		ops[src] = &nodeOp{kind: opRemove, target: src, implicit: true}
	}

	c := newCompiler(b, ops)
	regs, err := c.regions(c.top())
	if err != nil {
		return nil, err
	}
	if err := c.checkApplied(); err != nil {
		return nil, err
	}
	return newScript(b.base, regs), nil
}

func (c *compiler) top() scope {
	return scope{start: 0, end: c.file.Len()}
}

func (c *compiler) inScope(sc scope, id ast.NodeID, inclusive bool) bool {
	if sc.root == ast.NoNodeID {
		return true
	}
	if id == sc.root {
		return inclusive
	}
	return c.t.IsAncestor(sc.root, id)
}

func (c *compiler) checkApplied() error {
	for _, op := range c.sortedOps() {
		if !op.implicit && !c.applied[appliedKey{kind: 'n', node: op.target}] {
			return usage(verb(op.kind), op.target, "edit inside a replaced or removed node is not rendered by any placeholder")
		}
	}
	for _, key := range c.sortedInsertKeys() {
		if !c.applied[appliedKey{kind: 'i', node: key.owner, prop: key.prop}] {
			return usage("insert", key.owner, "insertion into %s inside a replaced or removed node", key.prop)
		}
	}
	for decl := range c.b.mods {
		if !c.applied[appliedKey{kind: 'm', node: decl}] {
			return usage("modifiers", decl, "declaration is replaced or removed")
		}
	}
	for i := range c.b.texts {
		if !c.applied[appliedKey{kind: 't', idx: i}] {
			return usage("text", ast.NoNodeID, "raw text edit inside a replaced or removed node")
		}
	}
	return nil
}

func verb(k opKind) string {
	if k == opRemove {
		return "remove"
	}
	return "replace"
}

func (c *compiler) sortedOps() []*nodeOp {
	out := slices.Collect(maps.Values(c.ops))
	slices.SortFunc(out, func(a, b *nodeOp) int {
		return cmp.Or(cmp.Compare(a.seq, b.seq), cmp.Compare(a.target, b.target))
	})
	return out
}

func (c *compiler) sortedInsertKeys() []slotKey {
	keys := slices.Collect(maps.Keys(c.b.inserts))
	slices.SortFunc(keys, func(a, b slotKey) int {
		return cmp.Compare(c.b.inserts[a][0].seq, c.b.inserts[b][0].seq)
	})
	return keys
}

type listEdit struct {
	removed map[ast.NodeID]*nodeOp
	ins     []insertion
	seq     int
}

// regions collects the edits that apply directly inside sc: operations
// nested in a replaced or removed node are left to the placeholders that
// render that node.
func (c *compiler) regions(sc scope) ([]region, error) {
	t := c.t
	dead := make(map[ast.NodeID]bool)
	for id := range c.ops {
		if c.inScope(sc, id, false) {
			dead[id] = true
		}
	}
	buried := func(id ast.NodeID) bool {
		for cur := id; cur != ast.NoNodeID && cur != sc.root; cur = t.Parent(cur) {
			if dead[cur] {
				return true
			}
		}
		return false
	}

	var out []region
	lists := make(map[slotKey]*listEdit)
	listOf := func(k slotKey, seq int) *listEdit {
		le := lists[k]
		if le == nil {
			le = &listEdit{removed: make(map[ast.NodeID]*nodeOp), seq: seq}
			lists[k] = le
		}
		return le
	}

	for _, op := range c.sortedOps() {
		if !c.inScope(sc, op.target, false) || buried(t.Parent(op.target)) {
			continue
		}
		loc := t.Location(op.target)
		switch {
		case op.kind == opReplace:
			r, err := c.replaceRegion(op)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		case loc.IsList():
			listOf(slotKey{owner: t.Parent(op.target), prop: loc}, op.seq).removed[op.target] = op
		case !loc.Info().Optional:
			return nil, usage("move", op.target, "moved node leaves the required slot %s empty", loc)
		default:
			r, err := c.removeSlotRegion(op)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		c.applied[appliedKey{kind: 'n', node: op.target}] = true
	}

	for _, key := range c.sortedInsertKeys() {
		if !c.inScope(sc, key.owner, true) || buried(key.owner) {
			continue
		}
		ins := c.b.inserts[key]
		if key.prop.IsList() {
			listOf(key, ins[0].seq).ins = ins
		} else {
			r, err := c.setRegion(key, ins[0])
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		c.applied[appliedKey{kind: 'i', node: key.owner, prop: key.prop}] = true
	}

	keys := slices.Collect(maps.Keys(lists))
	slices.SortFunc(keys, func(a, b slotKey) int { return cmp.Compare(lists[a].seq, lists[b].seq) })
	for _, key := range keys {
		rs, err := c.listRegions(key, lists[key])
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}

	for _, decl := range slices.Sorted(maps.Keys(c.b.mods)) {
		if !c.inScope(sc, decl, true) || buried(decl) {
			continue
		}
		if r, ok := c.modsRegion(decl, c.b.mods[decl]); ok {
			out = append(out, r)
		}
		c.applied[appliedKey{kind: 'm', node: decl}] = true
	}

	if sc.root == ast.NoNodeID {
		for i, tx := range c.b.texts {
			if c.textBuried(tx, dead) {
				continue
			}
			out = append(out, region{start: tx.start, end: tx.end, text: tx.text, seq: tx.seq})
			c.applied[appliedKey{kind: 't', idx: i}] = true
		}
	}

	for i := range out {
		out[i].start = min(max(out[i].start, sc.start), sc.end)
		out[i].end = min(max(out[i].end, out[i].start), sc.end)
	}
	slices.SortStableFunc(out, func(a, b region) int {
		return cmp.Or(
			cmp.Compare(a.start, b.start),
			cmp.Compare(a.end-a.start, b.end-b.start),
			cmp.Compare(a.seq, b.seq),
		)
	})
	for i := 1; i < len(out); i++ {
		if out[i].start < out[i-1].end {
			return nil, usage("compile", out[i].node, "edit at %d overlaps the edit at %d-%d", out[i].start, out[i-1].start, out[i-1].end)
		}
	}
	return out, nil
}

func (c *compiler) textBuried(tx textOp, dead map[ast.NodeID]bool) bool {
	for id := range dead {
		sp := c.t.Span(id)
		if tx.start < sp.End && tx.end > sp.Start {
			return true
		}
		if tx.start == tx.end && tx.start > sp.Start && tx.start < sp.End {
			return true
		}
	}
	return false
}

// replaceRegion prints the replacement at the indentation of the target's line.
func (c *compiler) replaceRegion(op *nodeOp) (region, error) {
	sp := c.t.Span(op.target)
	r, err := c.print(op.repl, c.file.Indentation(sp.Start))
	if err != nil {
		return region{}, err
	}
	return region{start: sp.Start, end: sp.End, text: r.Text, ranges: r.Ranges, seq: op.seq, node: op.target}, nil
}

func (c *compiler) print(id ast.NodeID, indent string) (format.Rendered, error) {
	r, err := format.Print(c.t, id, indent, c.b.opt, c)
	if err != nil {
		return format.Rendered{}, fmt.Errorf("rewrite: print %s: %w", c.t.Kind(id), err)
	}
	return r, nil
}

// Placeholder renders a placeholder node for the printer.
func (c *compiler) Placeholder(ph ast.NodeID, indent string) (format.Rendered, error) {
	n := c.t.Node(ph)
	if n.Flags.Has(ast.FlagString) {
		text, _ := format.Reindent(n.Text, "", indent)
		return format.Rendered{Text: text}, nil
	}
	src := n.Ref
	if src == ast.NoNodeID {
		return format.Rendered{}, usage("placeholder", ph, "placeholder without a source")
	}
	if n.Flags.Has(ast.FlagMove) {
		c.movePh[ph]++
		c.moveSrc[src]++
		if c.movePh[ph] > 1 {
			return format.Rendered{}, usage("move", src, "move placeholder used more than once")
		}
		if c.moveSrc[src] > 1 {
			return format.Rendered{}, usage("move", src, "node moved to more than one place")
		}
	}
	return c.renderOriginal(src, indent)
}

// renderOriginal returns the source text of src with the edits recorded
// inside it applied, re-indented for a line indented by indent.
func (c *compiler) renderOriginal(src ast.NodeID, indent string) (format.Rendered, error) {
	if c.active[src] {
		return format.Rendered{}, usage("placeholder", src, "node is rendered inside its own replacement")
	}
	c.active[src] = true
	defer delete(c.active, src)

	sp := c.t.Span(src)
	regs, err := c.regions(scope{root: src, start: sp.Start, end: sp.End})
	if err != nil {
		return format.Rendered{}, err
	}
	text, ranges := c.splice(sp.Start, sp.End, regs)
	out, mapOff := format.Reindent(text, c.file.Indentation(sp.Start), indent)
	for id, rg := range ranges {
		ranges[id] = format.Range{Start: mapOff(rg.Start), End: mapOff(rg.End)}
	}
	return format.Rendered{Text: out, Ranges: ranges}, nil
}

// splice applies sorted regions to the original bytes [start, end).
func (c *compiler) splice(start, end uint32, regs []region) (string, map[ast.NodeID]format.Range) {
	var sb strings.Builder
	ranges := make(map[ast.NodeID]format.Range)
	pos := start
	for _, r := range regs {
		sb.Write(c.content[pos:r.start])
		off := sb.Len()
		sb.WriteString(r.text)
		for id, rg := range r.ranges {
			ranges[id] = rg.Shift(off)
		}
		pos = r.end
	}
	sb.Write(c.content[pos:end])
	return sb.String(), ranges
}

// textBuf assembles region text from literal pieces and printed nodes.
type textBuf struct {
	sb     strings.Builder
	ranges map[ast.NodeID]format.Range
}

func (tb *textBuf) str(s string) { tb.sb.WriteString(s) }

func (tb *textBuf) add(r format.Rendered) {
	off := tb.sb.Len()
	tb.sb.WriteString(r.Text)
	if tb.ranges == nil {
		tb.ranges = make(map[ast.NodeID]format.Range)
	}
	for id, rg := range r.Ranges {
		tb.ranges[id] = rg.Shift(off)
	}
}

func (tb *textBuf) region(start, end uint32, seq int, node ast.NodeID) region {
	return region{start: start, end: end, text: tb.sb.String(), ranges: tb.ranges, seq: seq, node: node}
}

// renderList prints nodes separated by sep between prefix and suffix.
// deeper nodes get one more indentation unit (statements under a case label).
func (c *compiler) renderList(tb *textBuf, nodes []insertion, sep, indent, prefix, suffix string, deeper func(ast.NodeID) bool) error {
	for i, in := range nodes {
		lead := sep
		if i == 0 {
			lead = prefix
		}
		ind := indent
		if deeper != nil && deeper(in.node) {
			ind += c.unit
			if strings.HasSuffix(lead, "\n"+indent) {
				lead += c.unit
			}
		}
		tb.str(lead)
		r, err := c.print(in.node, ind)
		if err != nil {
			return err
		}
		tb.add(r)
	}
	tb.str(suffix)
	return nil
}

func u32(i int) uint32 {
	n, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("rewrite: offset overflow: %w", err))
	}
	return n
}
