package mutation

import (
	"sort"
	"strings"

	"github.com/polymute/polymute/internal/language"
	"github.com/polymute/polymute/internal/syntax"
)

// loggingFacades are the dotted heads recognized as logging calls, whose
// argument subtrees are never mutated (string-literal log messages are
// noisy, unkillable mutation sites).
var loggingFacades = map[string]struct{}{
	"log":     {},
	"logger":  {},
	"logging": {},
}

var loggingSuffixes = []string{".debug", ".info", ".warning", ".error", ".critical"}

// callKind and calleeField let the discovery walk recognize call expressions
// without importing a separate per-language call-detection table for every
// skip rule.
var callKind = map[language.Tag]string{
	language.Python:     "call",
	language.JavaScript:  "call_expression",
	language.TypeScript:  "call_expression",
	language.Rust:        "call_expression",
}

var docstringContainers = map[language.Tag]string{
	language.Python: "block",
}

// Discover walks tree depth-first and emits every Mutation produced by an
// applicable operator at an eligible site, in source order. When scope is
// non-nil, only sites within scope's byte range are emitted.
func Discover(file string, lang language.Tag, tree *syntax.Tree, scope *syntax.Node) []Mutation {
	ops := Catalog(lang)
	source := tree.Source()

	// Operators that swap an infix token replace only that token, and
	// return_value replaces only the returned expression; every other
	// operator replaces the whole node it matched.
	tokenTables := map[Tag]map[string]string{
		Arithmetic: arithmeticRotation, Boundary: boundaryFlip, Negation: negationFlip,
		Logical: logicalFlip(lang), Membership: membershipFlip, Identity: identityFlip,
	}

	var out []Mutation

	var walk func(n syntax.Node, inDocstringPosition bool)
	walk = func(n syntax.Node, inDocstringPosition bool) {
		if isLoggingCall(n, lang) {
			return
		}
		if inDocstringPosition && isDocstring(n, lang) {
			return
		}
		if isPureStringConcat(n, lang) {
			return
		}

		if scope == nil || withinScope(n, *scope) {
			for _, op := range ops {
				if !op.Predicate(n) {
					continue
				}
				repl, ok := op.Rewrite(n)
				if !ok {
					continue
				}
				site := n
				if table, isToken := tokenTables[op.Tag]; isToken {
					site, _, _ = operatorChild(n, table)
				} else if op.Tag == ReturnValue {
					site, _ = returnExpr(n)
				}
				out = append(out, newMutation(file, lang, source, site, op.Tag, repl))
			}
		}

		firstStmtIsDocstring := docstringContainers[lang] == n.Kind() ||
			(lang == language.Python && n.Kind() == "module")
		for i := 0; i < n.ChildCount(); i++ {
			c, ok := n.Child(i)
			if !ok {
				continue
			}
			walk(c, firstStmtIsDocstring && i == 0)
		}
	}

	// The module's own first child is itself a docstring position (the
	// module-level docstring), same as the first statement of any block; the
	// "module" case of firstStmtIsDocstring above covers it.
	walk(tree.Root(), true)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartByte < out[j].StartByte
	})

	for i := range out {
		out[i].RefID = refID(i)
	}

	return out
}

func refID(i int) string {
	const base = "m"

	return base + itoa(i+1)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

func withinScope(n, scope syntax.Node) bool {
	return n.StartByte() >= scope.StartByte() && n.EndByte() <= scope.EndByte()
}

func newMutation(file string, lang language.Tag, source []byte, n syntax.Node, tag Tag, replacement []byte) Mutation {
	line, col := lineColumn(source, n.StartByte())
	before, after := surroundingLines(source, n.StartByte())

	original := make([]byte, len(n.Text()))
	copy(original, n.Text())

	return Mutation{
		File:          file,
		Language:      lang,
		Line:          line,
		Column:        col,
		StartByte:     n.StartByte(),
		EndByte:       n.EndByte(),
		Operator:      tag,
		Original:      original,
		Replacement:   replacement,
		ContextBefore: before,
		ContextAfter:  after,
	}
}

// isDocstring matches the first string-expression statement of a module,
// class, or function body (Python only; other languages have no comparable
// doc-string convention in their grammars).
func isDocstring(n syntax.Node, lang language.Tag) bool {
	if lang != language.Python {
		return false
	}
	if n.Kind() != "expression_statement" {
		return false
	}
	child, ok := n.Child(0)

	return ok && child.Kind() == "string"
}

// isLoggingCall matches a call node whose callee's dotted head is a known
// logging facade, or whose callee ends in one of the logging-level methods.
func isLoggingCall(n syntax.Node, lang language.Tag) bool {
	if n.Kind() != callKind[lang] {
		return false
	}
	callee, ok := n.ChildByFieldName("function")
	if !ok {
		callee, ok = n.Child(0)
		if !ok {
			return false
		}
	}
	text := string(callee.Text())

	head := text
	if i := strings.Index(head, "."); i >= 0 {
		head = head[:i]
	}
	if _, known := loggingFacades[head]; known {
		return true
	}

	for _, suffix := range loggingSuffixes {
		if strings.HasSuffix(text, suffix) {
			return true
		}
	}

	return false
}

// isPureStringConcat matches a binary/additive expression whose operands,
// recursively, are only string literals and identifiers — string assembly
// that would otherwise generate noisy, unkillable string_literal mutations.
func isPureStringConcat(n syntax.Node, lang language.Tag) bool {
	containers := exprContainerKinds[lang]
	if !inKinds(n.Kind(), containers) {
		return false
	}
	_, op, ok := operatorChild(n, map[string]string{"+": ""})
	if !ok || op != "+" {
		return false
	}

	return allStringOrIdent(n, stringLiteralKind[lang])
}

func allStringOrIdent(n syntax.Node, stringKind string) bool {
	for i := 0; i < n.ChildCount(); i++ {
		c, ok := n.Child(i)
		if !ok || !c.IsNamed() {
			continue
		}
		switch c.Kind() {
		case stringKind, "identifier":
			continue
		default:
			if inKinds(c.Kind(), []string{"binary_operator", "binary_expression"}) {
				if allStringOrIdent(c, stringKind) {
					continue
				}
			}

			return false
		}
	}

	return true
}
