// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package swift

import "strings"

// printer renders a node tree in the format of swift-demangle without
// sugaring of standard library types.
type printer struct {
	sb strings.Builder
	ok bool
}

func printSymbol(n *node) (string, bool) {
	p := &printer{ok: true}
	p.print(n)
	if !p.ok {
		return "", false
	}
	return p.sb.String(), true
}

func (p *printer) write(s string) {
	p.sb.WriteString(s)
}

func (p *printer) fail() {
	p.ok = false
}

func (p *printer) print(n *node) {
	if n == nil {
		p.fail()
		return
	}
	switch n.kind {
	case kindIdentifier, kindModule, kindGenericParam:
		p.write(n.text)
	case kindType:
		p.print(n.child(0))
	case kindStructure, kindClass, kindEnum, kindProtocol, kindTypeAlias:
		p.printContext(n.child(0))
		p.print(n.child(1))
	case kindBoundGeneric:
		p.print(n.child(0))
		p.write("<")
		for i, arg := range n.children[1:] {
			if i > 0 {
				p.write(", ")
			}
			p.print(arg)
		}
		p.write(">")
	case kindTuple:
		p.printTuple(n, nil)
	case kindFunctionType:
		p.printFunctionType(n, nil)
	case kindDependentGenericType:
		p.printGenericSignature(n.child(0))
		p.print(n.child(1))
	case kindInOut:
		p.write("inout ")
		p.print(n.child(0))
	case kindExtension:
		p.write("(extension in ")
		p.print(n.child(0))
		p.write("):")
		p.print(n.child(1))
	case kindFunction:
		p.printContext(n.child(0))
		p.print(n.child(1))
		p.printSignature(n.child(2), n.child(3))
	case kindAllocator:
		p.printContext(n.child(0))
		if n.child(0).kind == kindClass {
			p.write("__allocating_init")
		} else {
			p.write("init")
		}
		p.printSignature(n.child(2), n.child(3))
	case kindConstructor:
		p.printContext(n.child(0))
		p.write("init")
		p.printSignature(n.child(2), n.child(3))
	case kindDeallocator:
		p.printContext(n.child(0))
		p.write("__deallocating_deinit")
	case kindDestructor:
		p.printContext(n.child(0))
		p.write("deinit")
	case kindClosure:
		p.write("closure #")
		p.write(n.text)
		p.write(" ")
		p.print(n.child(1))
		p.write(" in ")
		p.print(n.child(0))
	case kindVariable:
		p.printContext(n.child(0))
		p.print(n.child(1))
		p.write(" : ")
		p.print(n.child(2))
	case kindAccessor:
		v := n.child(0)
		if v == nil || v.kind != kindVariable {
			p.fail()
			return
		}
		p.printContext(v.child(0))
		p.print(v.child(1))
		p.write(".")
		p.write(n.text)
		p.write(" : ")
		p.print(v.child(2))
	case kindStatic:
		p.write("static ")
		p.print(n.child(0))
	case kindTypeWrapper, kindAttribute:
		p.write(n.text)
		p.print(n.child(0))
	default:
		p.fail()
	}
}

// printContext prints the scope of a declaration followed by a dot.
func (p *printer) printContext(ctx *node) {
	p.print(ctx)
	p.write(".")
}

// printSignature prints the type of a function entity, attaching labels to
// its parameters.
func (p *printer) printSignature(t, labels *node) {
	if t == nil || t.kind != kindType {
		p.fail()
		return
	}
	inner := t.child(0)
	if inner != nil && inner.kind == kindDependentGenericType {
		p.printGenericSignature(inner.child(0))
		t = inner.child(1)
		if t == nil {
			p.fail()
			return
		}
		inner = t.child(0)
	}
	if inner == nil || inner.kind != kindFunctionType {
		p.fail()
		return
	}
	p.printFunctionType(inner, labels)
}

func (p *printer) printGenericSignature(sig *node) {
	if sig == nil {
		p.fail()
		return
	}
	p.write("<")
	p.write(genericParamName(0, 0))
	for i, req := range sig.children {
		if i == 0 {
			p.write(" where ")
		} else {
			p.write(", ")
		}
		p.write(req.text)
		p.write(": ")
		p.print(req.child(0))
	}
	p.write(">")
}

func (p *printer) printFunctionType(ft, labels *node) {
	params := ft.child(0)
	if params == nil || params.child(0) == nil {
		p.fail()
		return
	}
	if params.child(0).kind == kindTuple {
		p.printTuple(params.child(0), labels)
	} else {
		p.write("(")
		if labels != nil {
			p.printLabel(labels.child(0))
		}
		p.print(params)
		p.write(")")
	}
	if ft.async {
		p.write(" async")
	}
	if ft.throws {
		p.write(" throws")
	}
	p.write(" -> ")
	p.print(ft.child(1))
}

func (p *printer) printTuple(tuple, labels *node) {
	p.write("(")
	for i, elem := range tuple.children {
		if i > 0 {
			p.write(", ")
		}
		switch {
		case labels != nil:
			p.printLabel(labels.child(i))
		case elem.text != "":
			p.write(elem.text)
			p.write(": ")
		}
		p.print(elem.child(0))
		if elem.variadic {
			p.write("...")
		}
	}
	p.write(")")
}

func (p *printer) printLabel(l *node) {
	if l == nil {
		p.fail()
		return
	}
	if l.kind == kindIdentifier {
		p.write(l.text)
	} else {
		p.write("_")
	}
	p.write(": ")
}
