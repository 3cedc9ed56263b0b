// Package ast defines the upstream AST node surface the code generator
// walks, per spec.md §6.2: "AST nodes with a kind tag and linked resolved
// symbol pointers." Building this tree is the job of the lexer, parser
// and semantic analyzer — all explicitly out of scope (spec.md §1) — so
// this package models only the node shapes codegen needs to dispatch on,
// following the teacher's tagged-interface-plus-Walk pattern
// (lang/ast/nodes.go, lang/ast/visitor.go) rather than re-deriving a
// parser of our own.
package ast

import "github.com/7mind/jbcgen/internal/token"

// Node is the common interface of every AST node reachable from a method
// body: it can report its source span and accept a Visitor.
type Node interface {
	Span() (start, end token.Pos)
	Walk(v Visitor)
}

// Expr is any expression node. Whether its value is needed or discarded
// is a property of how codegen calls Emit, not of the node itself
// (spec.md §4.4).
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Visitor and Walk mirror the teacher's lang/ast/visitor.go exactly: a
// node is visited on entry and (if the visitor didn't prune) again on
// exit after its children, which lets a single visitor implement both
// pre- and post-order passes.
type VisitDirection int

const (
	VisitEnter VisitDirection = iota
	VisitExit
)

type Visitor interface {
	Visit(n Node, dir VisitDirection) (w Visitor)
}

type VisitorFunc func(n Node, dir VisitDirection) Visitor

func (f VisitorFunc) Visit(n Node, dir VisitDirection) Visitor { return f(n, dir) }

func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if v = v.Visit(n, VisitEnter); v == nil {
		return
	}
	n.Walk(v)
	v.Visit(n, VisitExit)
}

func walkExprs(v Visitor, es []Expr) {
	for _, e := range es {
		Walk(v, e)
	}
}

func walkStmts(v Visitor, ss []Stmt) {
	for _, s := range ss {
		Walk(v, s)
	}
}
