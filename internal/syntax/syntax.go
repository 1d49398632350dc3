// Package syntax wraps go-tree-sitter behind a small facade so the rest of
// the tool never imports the concrete tree-sitter types directly — mirroring
// how a single-language AST walker would keep its node type private to one
// package.
package syntax

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/polymute/polymute/internal/language"
)

var grammars = map[language.Tag]func() *tree_sitter.Language{
	language.Python:     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
	language.JavaScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
	language.TypeScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
	language.Rust:       func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
}

// Tree is a parsed source file, owning the tree-sitter tree and the source
// bytes it was parsed from.
type Tree struct {
	tree   *tree_sitter.Tree
	source []byte
}

// Node is a typed, byte-ranged facade over a tree-sitter node. The zero
// value is not valid; obtain one from Tree.Root or Node.Child.
type Node struct {
	n      tree_sitter.Node
	source []byte
}

// Parse parses source using the grammar for lang.
func Parse(lang language.Tag, source []byte) (*Tree, error) {
	factory, ok := grammars[lang]
	if !ok {
		return nil, errUnsupportedGrammar{lang}
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(factory()); err != nil {
		return nil, err
	}

	t := parser.Parse(source, nil)

	return &Tree{tree: t, source: source}, nil
}

// Close releases the underlying tree-sitter resources.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Root returns the tree's root node.
func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), source: t.source}
}

// Source returns the bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Kind returns the grammar's node-type name, e.g. "binary_operator".
func (n Node) Kind() string {
	return n.n.Kind()
}

// StartByte returns the node's start offset in the source.
func (n Node) StartByte() uint32 {
	return n.n.StartByte()
}

// EndByte returns the node's end offset (exclusive) in the source.
func (n Node) EndByte() uint32 {
	return n.n.EndByte()
}

// Text returns the source bytes spanned by the node.
func (n Node) Text() []byte {
	return n.source[n.n.StartByte():n.n.EndByte()]
}

// ChildCount returns the number of named and unnamed children.
func (n Node) ChildCount() int {
	return int(n.n.ChildCount())
}

// Child returns the i-th child, or the zero Node and false if out of range.
func (n Node) Child(i int) (Node, bool) {
	c := n.n.Child(uint(i))
	if c == nil {
		return Node{}, false
	}

	return Node{n: *c, source: n.source}, true
}

// ChildByFieldName returns the child associated with fieldName in the
// grammar (e.g. "left", "operator", "body"), if any.
func (n Node) ChildByFieldName(fieldName string) (Node, bool) {
	c := n.n.ChildByFieldName(fieldName)
	if c == nil {
		return Node{}, false
	}

	return Node{n: *c, source: n.source}, true
}

// Parent returns n's parent node, if any (false for the tree root).
func (n Node) Parent() (Node, bool) {
	p := n.n.Parent()
	if p == nil {
		return Node{}, false
	}

	return Node{n: *p, source: n.source}, true
}

// IsNamed reports whether the node is a named grammar rule rather than an
// anonymous token (e.g. punctuation).
func (n Node) IsNamed() bool {
	return n.n.IsNamed()
}

// Valid reports whether the node was actually found (vs. the zero value
// returned by a failed lookup).
func (n Node) Valid() bool {
	return n.source != nil
}

// Walk calls visit for n and, pre-order, for every descendant. visit
// returns false to skip the subtree rooted at the node it was called with.
func Walk(n Node, visit func(Node) bool) {
	if !visit(n) {
		return
	}
	for i := 0; i < n.ChildCount(); i++ {
		child, ok := n.Child(i)
		if !ok {
			continue
		}
		Walk(child, visit)
	}
}

// FindFunction locates the first function-definition node named name.
func FindFunction(root Node, lang language.Tag, name string) (Node, bool) {
	def := functionDefKind[lang]

	var found Node
	var ok bool

	Walk(root, func(n Node) bool {
		if ok {
			return false
		}
		if n.Kind() == def {
			if nameNode, hasName := n.ChildByFieldName("name"); hasName && string(nameNode.Text()) == name {
				found, ok = n, true

				return false
			}
		}

		return true
	})

	return found, ok
}

var functionDefKind = map[language.Tag]string{
	language.Python:     "function_definition",
	language.JavaScript: "function_declaration",
	language.TypeScript: "function_declaration",
	language.Rust:       "function_item",
}

type errUnsupportedGrammar struct {
	lang language.Tag
}

func (e errUnsupportedGrammar) Error() string {
	return "no grammar registered for language " + string(e.lang)
}
