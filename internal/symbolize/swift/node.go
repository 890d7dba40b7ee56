// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package swift

// kind identifies the type of a node in a demangled symbol tree.
type kind int

const (
	kindIdentifier kind = iota
	kindModule
	kindType // wraps exactly one type node

	kindStructure
	kindClass
	kindEnum
	kindProtocol
	kindTypeAlias
	kindBoundGeneric
	kindTuple
	kindTupleElement
	kindFunctionType
	kindGenericParam
	kindDependentGenericType
	kindGenericSignature
	kindConformance
	kindInOut
	kindExtension

	kindFunction
	kindAllocator
	kindConstructor
	kindDeallocator
	kindDestructor
	kindClosure
	kindVariable
	kindAccessor
	kindStatic

	kindLabelList
	kindEmptyList
	kindFirstElementMarker
	kindVariadicMarker
	kindThrows
	kindAsync

	// kindTypeWrapper prints text followed by its only child, e.g. "type
	// metadata for main.Foo".
	kindTypeWrapper
	// kindAttribute is a top-level attribute such as "partial apply
	// forwarder for " that applies to the entity in the same symbol.
	kindAttribute
)

// node is a node of a demangled symbol tree.
type node struct {
	kind     kind
	text     string
	children []*node

	throws, async, variadic bool
}

func newNode(k kind, text string, children ...*node) *node {
	return &node{kind: k, text: text, children: children}
}

func newType(n *node) *node {
	return newNode(kindType, "", n)
}

func (n *node) child(i int) *node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func isNominal(k kind) bool {
	switch k {
	case kindStructure, kindClass, kindEnum, kindProtocol, kindTypeAlias:
		return true
	}
	return false
}

// isEntity reports whether n names a declaration that can appear as the
// outermost node of a symbol or as the context of a closure.
func isEntity(n *node) bool {
	switch n.kind {
	case kindFunction, kindAllocator, kindConstructor, kindDeallocator, kindDestructor,
		kindClosure, kindVariable, kindAccessor, kindStatic:
		return true
	}
	return false
}

// isContext reports whether n can be the parent scope of a declaration.
func isContext(n *node) bool {
	return n.kind == kindExtension || isEntity(n)
}

func isDeclName(n *node) bool {
	return n.kind == kindIdentifier
}
