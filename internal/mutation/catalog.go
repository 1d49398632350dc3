package mutation

import (
	"github.com/polymute/polymute/internal/language"
	"github.com/polymute/polymute/internal/syntax"
)

// Tag is the symbolic name of a catalog entry, carried on every Mutation it
// produces and shown in reports.
type Tag string

// The catalog's minimum operator set.
const (
	Arithmetic    Tag = "arithmetic"
	Boundary      Tag = "boundary"
	Negation      Tag = "negation"
	Logical       Tag = "logical"
	Boolean       Tag = "boolean"
	NotRemoval    Tag = "not_removal"
	ReturnValue   Tag = "return_value"
	StringLiteral Tag = "string_literal"
	BlockRemoval  Tag = "block_removal"
	Membership    Tag = "membership"
	Identity      Tag = "identity"
)

// Operator is a catalog entry: a pure function from (node, source) to
// (applicable?) and, if applicable, a replacement. Discover picks the byte
// range that replacement covers: the operator token, the returned
// expression, or the whole node. Apart from block_removal, which inspects the
// node's parent, an operator never looks outside the node it matches.
type Operator struct {
	Tag       Tag
	Languages []language.Tag
	// Predicate reports whether this operator applies to n.
	Predicate func(n syntax.Node) bool
	// Rewrite computes the replacement for n. Called only when Predicate
	// returned true. ok is false if no rewrite could be produced (e.g. a
	// return_value whose expression already is the language's null).
	Rewrite func(n syntax.Node) (replacement []byte, ok bool)
}

// exprContainerKinds are the node kinds that can carry an operator token
// among their children, per language.
var exprContainerKinds = map[language.Tag][]string{
	language.Python:     {"binary_operator", "comparison_operator", "boolean_operator"},
	language.JavaScript: {"binary_expression"},
	language.TypeScript: {"binary_expression"},
	language.Rust:       {"binary_expression"},
}

var unaryNotKind = map[language.Tag]string{
	language.Python:     "not_operator",
	language.JavaScript: "unary_expression",
	language.TypeScript: "unary_expression",
	language.Rust:       "unary_expression",
}

var returnKind = map[language.Tag]string{
	language.Python:     "return_statement",
	language.JavaScript: "return_statement",
	language.TypeScript: "return_statement",
	language.Rust:       "return_expression",
}

var stringLiteralKind = map[language.Tag]string{
	language.Python:     "string",
	language.JavaScript: "string",
	language.TypeScript: "string",
	language.Rust:       "string_literal",
}

var ifKind = map[language.Tag]string{
	language.Python:     "if_statement",
	language.JavaScript: "if_statement",
	language.TypeScript: "if_statement",
	language.Rust:       "if_expression",
}

// elifKind and elseKind are the node kinds of the "elif" and "else" clauses
// an if-node's "alternative" field points at. Only Python has an elif node
// kind, and only Python's else_clause names its body with a "body" field. In
// JS, TS and Rust the else_clause's single named child is either the else
// body or, for an "else if", a nested if-node.
var elifKind = map[language.Tag]string{
	language.Python: "elif_clause",
}

var elseKind = map[language.Tag]string{
	language.Python:     "else_clause",
	language.JavaScript: "else_clause",
	language.TypeScript: "else_clause",
	language.Rust:       "else_clause",
}

var nullLiteral = map[language.Tag]string{
	language.Python:     "None",
	language.JavaScript: "null",
	language.TypeScript: "null",
	language.Rust:       "Default::default()",
}

var noOpBody = map[language.Tag]string{
	language.Python:     "pass",
	language.JavaScript: "{}",
	language.TypeScript: "{}",
	language.Rust:       "{}",
}

var arithmeticRotation = map[string]string{
	"+": "-",
	"-": "+",
	"*": "/",
	"/": "*",
	"%": "*",
}

var boundaryFlip = map[string]string{
	"<":  "<=",
	"<=": "<",
	">":  ">=",
	">=": ">",
}

var negationFlip = map[string]string{
	"==": "!=",
	"!=": "==",
}

func logicalFlip(lang language.Tag) map[string]string {
	if lang == language.Python {
		return map[string]string{"and": "or", "or": "and"}
	}

	return map[string]string{"&&": "||", "||": "&&"}
}

var membershipFlip = map[string]string{
	"in":     "not in",
	"not in": "in",
}

var identityFlip = map[string]string{
	"is":     "is not",
	"is not": "is",
}

func booleanFlip(lang language.Tag) map[string]string {
	if lang == language.Python {
		return map[string]string{"True": "False", "False": "True"}
	}

	return map[string]string{"true": "false", "false": "true"}
}

// operatorChild returns the first unnamed (token) child of n whose text is a
// key of table. tree-sitter represents an infix operator as an anonymous
// token sibling of the named operand children, so this is grammar-agnostic.
func operatorChild(n syntax.Node, table map[string]string) (syntax.Node, string, bool) {
	for i := 0; i < n.ChildCount(); i++ {
		c, ok := n.Child(i)
		if !ok || c.IsNamed() {
			continue
		}
		text := string(c.Text())
		if _, known := table[text]; known {
			return c, text, true
		}
	}

	return syntax.Node{}, "", false
}

func inKinds(kind string, kinds []string) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}

	return false
}

func rotationOperator(tag Tag, table map[string]string) Operator {
	return Operator{
		Tag:       tag,
		Languages: []language.Tag{language.Python, language.JavaScript, language.TypeScript, language.Rust},
		Predicate: func(n syntax.Node) bool {
			_, _, ok := operatorChild(n, table)

			return ok
		},
		Rewrite: func(n syntax.Node) ([]byte, bool) {
			_, text, ok := operatorChild(n, table)
			if !ok {
				return nil, false
			}

			return []byte(table[text]), true
		},
	}
}

// Catalog returns the operators applicable to lang, restricted to the
// node-kind containers relevant to lang's grammar.
func Catalog(lang language.Tag) []Operator {
	containers := exprContainerKinds[lang]

	withContainer := func(op Operator) Operator {
		inner := op.Predicate
		op.Predicate = func(n syntax.Node) bool {
			return inKinds(n.Kind(), containers) && inner(n)
		}

		return op
	}

	ops := []Operator{
		withContainer(rotationOperator(Arithmetic, arithmeticRotation)),
		withContainer(rotationOperator(Boundary, boundaryFlip)),
		withContainer(rotationOperator(Negation, negationFlip)),
		withContainer(logicalOperator(lang)),
		booleanOperator(lang),
		notRemovalOperator(lang),
		returnValueOperator(lang),
		stringLiteralOperator(lang),
		blockRemovalOperator(lang),
	}

	if lang == language.Python {
		ops = append(ops,
			withContainer(rotationOperator(Membership, membershipFlip)),
			withContainer(rotationOperator(Identity, identityFlip)),
		)
	}

	filtered := ops[:0]
	for _, op := range ops {
		if inLanguages(lang, op.Languages) {
			filtered = append(filtered, op)
		}
	}

	return filtered
}

func inLanguages(lang language.Tag, langs []language.Tag) bool {
	for _, l := range langs {
		if l == lang {
			return true
		}
	}

	return false
}

func logicalOperator(lang language.Tag) Operator {
	table := logicalFlip(lang)

	return Operator{
		Tag:       Logical,
		Languages: []language.Tag{language.Python, language.JavaScript, language.TypeScript, language.Rust},
		Predicate: func(n syntax.Node) bool {
			_, _, ok := operatorChild(n, table)

			return ok
		},
		Rewrite: func(n syntax.Node) ([]byte, bool) {
			_, text, ok := operatorChild(n, table)
			if !ok {
				return nil, false
			}

			return []byte(table[text]), true
		},
	}
}

func booleanOperator(lang language.Tag) Operator {
	table := booleanFlip(lang)
	kinds := []string{"true", "false"}

	return Operator{
		Tag:       Boolean,
		Languages: []language.Tag{language.Python, language.JavaScript, language.TypeScript, language.Rust},
		Predicate: func(n syntax.Node) bool {
			return inKinds(n.Kind(), kinds)
		},
		Rewrite: func(n syntax.Node) ([]byte, bool) {
			repl, ok := table[string(n.Text())]

			return []byte(repl), ok
		},
	}
}

func notRemovalOperator(lang language.Tag) Operator {
	kind := unaryNotKind[lang]
	negTokens := map[string]struct{}{"not": {}, "!": {}}

	return Operator{
		Tag:       NotRemoval,
		Languages: []language.Tag{lang},
		Predicate: func(n syntax.Node) bool {
			if n.Kind() != kind {
				return false
			}
			_, operand, ok := notOperand(n, negTokens)

			return ok && operand.Valid()
		},
		Rewrite: func(n syntax.Node) ([]byte, bool) {
			_, operand, ok := notOperand(n, negTokens)
			if !ok {
				return nil, false
			}

			return operand.Text(), true
		},
	}
}

func notOperand(n syntax.Node, negTokens map[string]struct{}) (syntax.Node, syntax.Node, bool) {
	var operator, operand syntax.Node
	var haveOperator, haveOperand bool

	for i := 0; i < n.ChildCount(); i++ {
		c, ok := n.Child(i)
		if !ok {
			continue
		}
		if !c.IsNamed() {
			if _, isNeg := negTokens[string(c.Text())]; isNeg {
				operator, haveOperator = c, true
			}

			continue
		}
		operand, haveOperand = c, true
	}

	if !haveOperator || !haveOperand {
		return syntax.Node{}, syntax.Node{}, false
	}

	return operator, operand, true
}

func returnValueOperator(lang language.Tag) Operator {
	kind := returnKind[lang]
	null := nullLiteral[lang]

	return Operator{
		Tag:       ReturnValue,
		Languages: []language.Tag{lang},
		Predicate: func(n syntax.Node) bool {
			if n.Kind() != kind {
				return false
			}
			expr, ok := returnExpr(n)

			return ok && string(expr.Text()) != null
		},
		Rewrite: func(n syntax.Node) ([]byte, bool) {
			expr, ok := returnExpr(n)
			if !ok || string(expr.Text()) == null {
				return nil, false
			}

			return []byte(null), true
		},
	}
}

// returnExpr returns the expression child of a return-statement/expression
// node: the first named child after the "return" keyword token.
func returnExpr(n syntax.Node) (syntax.Node, bool) {
	for i := 0; i < n.ChildCount(); i++ {
		c, ok := n.Child(i)
		if !ok || !c.IsNamed() {
			continue
		}

		return c, true
	}

	return syntax.Node{}, false
}

const emptyStringLiteral = `""`

func stringLiteralOperator(lang language.Tag) Operator {
	kind := stringLiteralKind[lang]

	return Operator{
		Tag:       StringLiteral,
		Languages: []language.Tag{lang},
		Predicate: func(n syntax.Node) bool {
			if n.Kind() != kind {
				return false
			}

			return len(n.Text()) > len(emptyStringLiteral)
		},
		Rewrite: func(syntax.Node) ([]byte, bool) {
			return []byte(emptyStringLiteral), true
		},
	}
}

func blockRemovalOperator(lang language.Tag) Operator {
	noOp := noOpBody[lang]

	return Operator{
		Tag:       BlockRemoval,
		Languages: []language.Tag{lang},
		Predicate: func(n syntax.Node) bool {
			return isConditionalBody(n, lang) && string(n.Text()) != noOp
		},
		Rewrite: func(n syntax.Node) ([]byte, bool) {
			if !isConditionalBody(n, lang) {
				return nil, false
			}

			return []byte(noOp), true
		},
	}
}

// isConditionalBody reports whether n is a removable conditional body: the
// consequence of an if or elif, the body of a Python else_clause, or the
// named child of a JS/TS/Rust else_clause. The elif/else clause nodes
// themselves are never sites. An "else if" chain's nested if-node is not a
// body either; its own consequence and else are matched when the walk
// reaches them.
func isConditionalBody(n syntax.Node, lang language.Tag) bool {
	parent, ok := n.Parent()
	if !ok {
		return false
	}

	switch parent.Kind() {
	case ifKind[lang], elifKind[lang]:
		field, ok := parent.ChildByFieldName("consequence")

		return ok && sameNode(field, n)
	case elseKind[lang]:
		if field, ok := parent.ChildByFieldName("body"); ok {
			return sameNode(field, n)
		}

		return n.IsNamed() && n.Kind() != ifKind[lang] && n.Kind() != "comment"
	}

	return false
}

func sameNode(a, b syntax.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
