// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package swift demangles Swift symbol names as they appear in the name
// section of WebAssembly test bundles.
//
// The demangler covers the subset of the Swift mangling grammar that shows
// up in stack traces of test bundles: functions, initializers, accessors,
// closures and the types in their signatures. Symbols using anything outside
// that subset are returned unchanged.
package swift

import "strings"

// maxRepeatCount bounds repeated substitutions so that malformed input can't
// make the demangler allocate without limit.
const maxRepeatCount = 2048

// maxWords is the maximum number of words remembered for word substitutions.
const maxWords = 26

var manglingPrefixes = []string{"_$s", "$s", "_$S", "$S", "_$e", "$e", "_T0"}

// Demangle returns a human-readable form of the Swift symbol mangled.
// If mangled is not a Swift symbol or uses unsupported mangling, it is
// returned as is.
func Demangle(mangled string) string {
	body, ok := stripPrefix(mangled)
	if !ok {
		return mangled
	}
	d := &demangler{text: body}
	root, ok := d.demangleSymbol()
	if !ok {
		return mangled
	}
	s, ok := printSymbol(root)
	if !ok {
		return mangled
	}
	return s
}

// IsMangled reports whether s looks like a mangled Swift symbol.
func IsMangled(s string) bool {
	_, ok := stripPrefix(s)
	return ok
}

func stripPrefix(s string) (string, bool) {
	for _, p := range manglingPrefixes {
		if strings.HasPrefix(s, p) && len(s) > len(p) {
			return s[len(p):], true
		}
	}
	return "", false
}

// demangler is a stack machine over the mangled text. Operators are postfix:
// each one pops its operands from the node stack and pushes its result.
type demangler struct {
	text  string
	pos   int
	stack []*node
	subst []*node
	words []string
}

func (d *demangler) peek() byte {
	if d.pos >= len(d.text) {
		return 0
	}
	return d.text[d.pos]
}

func (d *demangler) next() byte {
	c := d.peek()
	if c != 0 {
		d.pos++
	}
	return c
}

func (d *demangler) nextIf(c byte) bool {
	if d.peek() != c || c == 0 {
		return false
	}
	d.pos++
	return true
}

func (d *demangler) push(n *node) {
	d.stack = append(d.stack, n)
}

func (d *demangler) top() *node {
	if len(d.stack) == 0 {
		return nil
	}
	return d.stack[len(d.stack)-1]
}

// pop removes and returns the top node if pred accepts it.
func (d *demangler) pop(pred func(*node) bool) *node {
	n := d.top()
	if n == nil || !pred(n) {
		return nil
	}
	d.stack = d.stack[:len(d.stack)-1]
	return n
}

func (d *demangler) popKind(k kind) *node {
	return d.pop(func(n *node) bool { return n.kind == k })
}

func (d *demangler) addSubst(n *node) {
	d.subst = append(d.subst, n)
}

// demangleSymbol parses the whole text and assembles the top-level node.
func (d *demangler) demangleSymbol() (*node, bool) {
	for d.pos < len(d.text) {
		n := d.demangleOperator()
		if n == nil {
			return nil, false
		}
		d.push(n)
	}

	var attrs []*node
	for {
		a := d.popKind(kindAttribute)
		if a == nil {
			break
		}
		attrs = append(attrs, a)
	}
	if len(d.stack) != 1 {
		return nil, false
	}
	root := d.stack[0]
	if root.kind == kindType {
		root = root.child(0)
	}
	if !isEntity(root) && root.kind != kindTypeWrapper && !isNominal(root.kind) && root.kind != kindBoundGeneric {
		return nil, false
	}
	for i := len(attrs) - 1; i >= 0; i-- {
		root = newNode(kindAttribute, attrs[i].text, root)
	}
	return root, true
}

func (d *demangler) demangleOperator() *node {
	c := d.next()
	switch {
	case c >= '0' && c <= '9':
		d.pos--
		return d.demangleIdentifier()
	}
	switch c {
	case 'A':
		return d.demangleMultiSubstitutions()
	case 'C':
		return d.demangleNominal(kindClass)
	case 'V':
		return d.demangleNominal(kindStructure)
	case 'O':
		return d.demangleNominal(kindEnum)
	case 'P':
		return d.demangleNominal(kindProtocol)
	case 'a':
		return d.demangleNominal(kindTypeAlias)
	case 'E':
		return d.demangleExtension()
	case 'F':
		return d.demanglePlainFunction()
	case 'G':
		return d.demangleBoundGeneric()
	case 'K':
		return newNode(kindThrows, "")
	case 'M':
		return d.demangleMetadata()
	case 'N':
		return d.wrapType("type metadata for ")
	case 'R':
		return d.demangleRequirement()
	case 'S':
		return d.demangleStandardSubstitution()
	case 'T':
		return d.demangleThunk()
	case 'Y':
		if d.nextIf('a') {
			return newNode(kindAsync, "")
		}
		return nil
	case 'Z':
		e := d.pop(isEntity)
		if e == nil {
			return nil
		}
		return newNode(kindStatic, "", e)
	case '_':
		return newNode(kindFirstElementMarker, "")
	case 'c':
		return d.popFunctionType()
	case 'd':
		return newNode(kindVariadicMarker, "")
	case 'f':
		return d.demangleFunctionEntity()
	case 'l':
		return d.demangleGenericSignature()
	case 'q':
		idx, ok := d.demangleIndex()
		if !ok {
			return nil
		}
		return newType(newNode(kindGenericParam, genericParamName(0, idx)))
	case 's':
		return newNode(kindModule, "Swift")
	case 't':
		return d.popTuple()
	case 'v':
		return d.demangleVariable()
	case 'x':
		return newType(newNode(kindGenericParam, genericParamName(0, 0)))
	case 'y':
		return newNode(kindEmptyList, "")
	case 'z':
		t := d.popKind(kindType)
		if t == nil {
			return nil
		}
		return newType(newNode(kindInOut, "", t))
	}
	return nil
}

// demangleNatural reads a decimal number. It returns -1 if there is none.
func (d *demangler) demangleNatural() int {
	if c := d.peek(); c < '0' || c > '9' {
		return -1
	}
	n := 0
	for {
		c := d.peek()
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
		if n > 1<<24 {
			return -1
		}
		d.pos++
	}
}

// demangleIndex reads an index encoded as "_" (0) or "<n>_" (n+1).
func (d *demangler) demangleIndex() (int, bool) {
	if d.nextIf('_') {
		return 0, true
	}
	n := d.demangleNatural()
	if n < 0 || !d.nextIf('_') {
		return 0, false
	}
	return n + 1, true
}

func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLetter(c byte) bool { return isLower(c) || isUpper(c) }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return !isDigit(c) && c != '_' && c != 0
}

func isWordEnd(c, prev byte) bool {
	return c == '_' || c == 0 || (!isUpper(prev) && isUpper(c))
}

func (d *demangler) demangleIdentifier() *node {
	hasWordSubsts := false
	if d.nextIf('0') {
		if d.peek() == '0' {
			// Punycode-encoded identifiers are not supported.
			return nil
		}
		hasWordSubsts = true
	}

	var ident strings.Builder
	for {
		for hasWordSubsts && isLetter(d.peek()) {
			c := d.next()
			var idx int
			if isLower(c) {
				idx = int(c - 'a')
			} else {
				idx = int(c - 'A')
				hasWordSubsts = false
			}
			if idx >= len(d.words) {
				return nil
			}
			ident.WriteString(d.words[idx])
		}
		if d.nextIf('0') {
			break
		}
		n := d.demangleNatural()
		if n <= 0 || d.pos+n > len(d.text) {
			return nil
		}
		slice := d.text[d.pos : d.pos+n]
		ident.WriteString(slice)
		d.collectWords(slice)
		d.pos += n
		if !hasWordSubsts {
			break
		}
	}
	if ident.Len() == 0 {
		return nil
	}
	n := newNode(kindIdentifier, ident.String())
	d.addSubst(n)
	return n
}

// collectWords remembers the words of an identifier for later word
// substitutions.
func (d *demangler) collectWords(s string) {
	start := -1
	for i := 0; i <= len(s); i++ {
		var c byte
		if i < len(s) {
			c = s[i]
		}
		if start >= 0 && isWordEnd(c, s[i-1]) {
			if i-start >= 2 && len(d.words) < maxWords {
				d.words = append(d.words, s[start:i])
			}
			start = -1
		}
		if start < 0 && isWordStart(c) {
			start = i
		}
	}
}

func (d *demangler) demangleMultiSubstitutions() *node {
	repeat := -1
	for {
		c := d.next()
		switch {
		case c == 0:
			return nil
		case isLower(c):
			n := d.pushMultiSubstitutions(repeat, int(c-'a'))
			if n == nil {
				return nil
			}
			d.push(n)
			repeat = -1
		case isUpper(c):
			return d.pushMultiSubstitutions(repeat, int(c-'A'))
		case c == '_':
			idx := repeat + 27
			if idx < 0 || idx >= len(d.subst) {
				return nil
			}
			return d.subst[idx]
		default:
			d.pos--
			repeat = d.demangleNatural()
			if repeat < 0 {
				return nil
			}
		}
	}
}

func (d *demangler) pushMultiSubstitutions(repeat, idx int) *node {
	if idx >= len(d.subst) || repeat > maxRepeatCount {
		return nil
	}
	n := d.subst[idx]
	for ; repeat > 1; repeat-- {
		d.push(n)
	}
	return n
}

// stdTypes maps standard substitutions "S<c>" to the Swift module types they
// stand for.
var stdTypes = map[byte]struct {
	kind kind
	name string
}{
	'A': {kindStructure, "AutoreleasingUnsafeMutablePointer"},
	'a': {kindStructure, "Array"},
	'b': {kindStructure, "Bool"},
	'D': {kindStructure, "Dictionary"},
	'd': {kindStructure, "Double"},
	'f': {kindStructure, "Float"},
	'h': {kindStructure, "Set"},
	'I': {kindStructure, "DefaultIndices"},
	'i': {kindStructure, "Int"},
	'J': {kindStructure, "Character"},
	'N': {kindStructure, "ClosedRange"},
	'n': {kindStructure, "Range"},
	'O': {kindStructure, "ObjectIdentifier"},
	'P': {kindStructure, "UnsafePointer"},
	'p': {kindStructure, "UnsafeMutablePointer"},
	'R': {kindStructure, "UnsafeBufferPointer"},
	'r': {kindStructure, "UnsafeMutableBufferPointer"},
	'S': {kindStructure, "String"},
	's': {kindStructure, "Substring"},
	'u': {kindStructure, "UInt"},
	'V': {kindStructure, "UnsafeRawPointer"},
	'v': {kindStructure, "UnsafeMutableRawPointer"},
	'W': {kindStructure, "UnsafeRawBufferPointer"},
	'w': {kindStructure, "UnsafeMutableRawBufferPointer"},
	'q': {kindEnum, "Optional"},
	'B': {kindProtocol, "BinaryFloatingPoint"},
	'E': {kindProtocol, "Encodable"},
	'e': {kindProtocol, "Decodable"},
	'F': {kindProtocol, "FloatingPoint"},
	'G': {kindProtocol, "RandomNumberGenerator"},
	'H': {kindProtocol, "Hashable"},
	'j': {kindProtocol, "Numeric"},
	'K': {kindProtocol, "BidirectionalCollection"},
	'k': {kindProtocol, "RandomAccessCollection"},
	'L': {kindProtocol, "Comparable"},
	'l': {kindProtocol, "Collection"},
	'M': {kindProtocol, "MutableCollection"},
	'm': {kindProtocol, "RangeReplaceableCollection"},
	'Q': {kindProtocol, "Equatable"},
	'T': {kindProtocol, "Sequence"},
	't': {kindProtocol, "IteratorProtocol"},
	'U': {kindProtocol, "UnsignedInteger"},
	'X': {kindProtocol, "RangeExpression"},
	'x': {kindProtocol, "Strideable"},
	'Y': {kindProtocol, "RawRepresentable"},
	'y': {kindProtocol, "StringProtocol"},
	'Z': {kindProtocol, "SignedInteger"},
	'z': {kindProtocol, "BinaryInteger"},
}

func swiftType(k kind, name string) *node {
	return newType(newNode(k, "", newNode(kindModule, "Swift"), newNode(kindIdentifier, name)))
}

func (d *demangler) demangleStandardSubstitution() *node {
	if d.nextIf('g') {
		t := d.popKind(kindType)
		if t == nil {
			return nil
		}
		opt := newType(newNode(kindBoundGeneric, "", swiftType(kindEnum, "Optional"), t))
		d.addSubst(opt)
		return opt
	}
	repeat := d.demangleNatural()
	if repeat > maxRepeatCount {
		return nil
	}
	st, ok := stdTypes[d.next()]
	if !ok {
		return nil
	}
	n := swiftType(st.kind, st.name)
	for ; repeat > 1; repeat-- {
		d.push(n)
	}
	return n
}

// popModule pops a module, converting a bare identifier into one.
func (d *demangler) popModule() *node {
	if id := d.popKind(kindIdentifier); id != nil {
		return newNode(kindModule, id.text)
	}
	return d.popKind(kindModule)
}

func (d *demangler) popContext() *node {
	if m := d.popModule(); m != nil {
		return m
	}
	if t := d.popKind(kindType); t != nil {
		c := t.child(0)
		if c == nil || (!isNominal(c.kind) && c.kind != kindBoundGeneric) {
			return nil
		}
		return c
	}
	return d.pop(isContext)
}

func (d *demangler) demangleNominal(k kind) *node {
	name := d.pop(isDeclName)
	if name == nil {
		return nil
	}
	ctx := d.popContext()
	if ctx == nil {
		return nil
	}
	t := newType(newNode(k, "", ctx, name))
	d.addSubst(t)
	return t
}

func (d *demangler) demangleExtension() *node {
	mod := d.popModule()
	if mod == nil {
		return nil
	}
	ctx := d.popContext()
	if ctx == nil {
		return nil
	}
	return newNode(kindExtension, "", mod, ctx)
}

func (d *demangler) demangleBoundGeneric() *node {
	var args []*node
	for {
		if d.popKind(kindEmptyList) != nil {
			break
		}
		t := d.popKind(kindType)
		if t == nil {
			// Generic arguments of parent contexts ("_"-separated lists)
			// are not supported.
			return nil
		}
		args = append(args, t)
	}
	if len(args) == 0 {
		return nil
	}
	base := d.popKind(kindType)
	if base == nil || !isNominal(base.child(0).kind) {
		return nil
	}
	children := []*node{base}
	for i := len(args) - 1; i >= 0; i-- {
		children = append(children, args[i])
	}
	t := newType(newNode(kindBoundGeneric, "", children...))
	d.addSubst(t)
	return t
}

func (d *demangler) popTuple() *node {
	tuple := newNode(kindTuple, "")
	if d.popKind(kindEmptyList) != nil {
		return newType(tuple)
	}
	for {
		first := d.popKind(kindFirstElementMarker) != nil
		elem := newNode(kindTupleElement, "")
		if d.popKind(kindVariadicMarker) != nil {
			elem.variadic = true
		}
		if id := d.popKind(kindIdentifier); id != nil {
			elem.text = id.text
		}
		t := d.popKind(kindType)
		if t == nil {
			return nil
		}
		elem.children = []*node{t}
		tuple.children = append([]*node{elem}, tuple.children...)
		if first {
			break
		}
	}
	return newType(tuple)
}

// popFunctionParams pops an argument tuple or result type. An empty list
// stands for the empty tuple.
func (d *demangler) popFunctionParams() *node {
	if d.popKind(kindEmptyList) != nil {
		return newType(newNode(kindTuple, ""))
	}
	return d.popKind(kindType)
}

func (d *demangler) popFunctionType() *node {
	ft := newNode(kindFunctionType, "")
	ft.throws = d.popKind(kindThrows) != nil
	ft.async = d.popKind(kindAsync) != nil
	params := d.popFunctionParams()
	if params == nil {
		return nil
	}
	result := d.popFunctionParams()
	if result == nil {
		return nil
	}
	ft.children = []*node{params, result}
	return newType(ft)
}

// functionParamCount returns the number of parameters of a function type
// node (possibly wrapped in a dependent generic type).
func functionParamCount(t *node) int {
	ft := t.child(0)
	if ft == nil {
		return 0
	}
	if ft.kind == kindDependentGenericType {
		ft = ft.child(1).child(0)
	}
	if ft == nil || ft.kind != kindFunctionType {
		return 0
	}
	params := ft.child(0).child(0)
	if params.kind == kindTuple {
		return len(params.children)
	}
	return 1
}

// popFunctionParamLabels pops the argument label list belonging to the
// function type t. It returns nil if the function has no labels.
func (d *demangler) popFunctionParamLabels(t *node) (*node, bool) {
	if d.popKind(kindEmptyList) != nil {
		return nil, true
	}
	n := functionParamCount(t)
	if n == 0 {
		return nil, true
	}
	labels := make([]*node, n)
	hasLabels := false
	for i := n - 1; i >= 0; i-- {
		l := d.pop(func(n *node) bool {
			return n.kind == kindIdentifier || n.kind == kindFirstElementMarker
		})
		if l == nil {
			return nil, false
		}
		labels[i] = l
		hasLabels = hasLabels || l.kind == kindIdentifier
	}
	if !hasLabels {
		return nil, true
	}
	return newNode(kindLabelList, "", labels...), true
}

func (d *demangler) demanglePlainFunction() *node {
	sig := d.popKind(kindGenericSignature)
	t := d.popFunctionType()
	if t == nil {
		return nil
	}
	labels, ok := d.popFunctionParamLabels(t)
	if !ok {
		return nil
	}
	if sig != nil {
		t = newType(newNode(kindDependentGenericType, "", sig, t))
	}
	name := d.pop(isDeclName)
	if name == nil {
		return nil
	}
	ctx := d.popContext()
	if ctx == nil {
		return nil
	}
	fn := newNode(kindFunction, "", ctx, name, t)
	if labels != nil {
		fn.children = append(fn.children, labels)
	}
	return fn
}

func (d *demangler) demangleFunctionEntity() *node {
	var k kind
	switch d.next() {
	case 'C':
		k = kindAllocator
	case 'c':
		k = kindConstructor
	case 'D':
		k = kindDeallocator
	case 'd':
		k = kindDestructor
	case 'U', 'u':
		return d.demangleClosure()
	default:
		return nil
	}

	if k == kindDeallocator || k == kindDestructor {
		ctx := d.popContext()
		if ctx == nil {
			return nil
		}
		return newNode(k, "", ctx)
	}

	t := d.popKind(kindType)
	if t == nil || t.child(0).kind != kindFunctionType {
		return nil
	}
	labels, ok := d.popFunctionParamLabels(t)
	if !ok {
		return nil
	}
	ctx := d.popContext()
	if ctx == nil {
		return nil
	}
	n := newNode(k, "", ctx, nil, t)
	if labels != nil {
		n.children = append(n.children, labels)
	}
	return n
}

func (d *demangler) demangleClosure() *node {
	idx, ok := d.demangleIndex()
	if !ok {
		return nil
	}
	t := d.popKind(kindType)
	if t == nil {
		return nil
	}
	ctx := d.popContext()
	if ctx == nil {
		return nil
	}
	n := newNode(kindClosure, "", ctx, t)
	n.text = itoa(idx + 1)
	return n
}

var accessorNames = map[byte]string{
	'g': "getter",
	's': "setter",
	'G': "getter",
	'w': "willset",
	'W': "didset",
	'r': "read",
	'M': "modify",
	'm': "materializeForSet",
}

func (d *demangler) demangleVariable() *node {
	t := d.popKind(kindType)
	if t == nil {
		return nil
	}
	name := d.pop(isDeclName)
	if name == nil {
		return nil
	}
	ctx := d.popContext()
	if ctx == nil {
		return nil
	}
	v := newNode(kindVariable, "", ctx, name, t)

	c := d.next()
	switch c {
	case 'p':
		return v
	case 'a':
		if d.next() != 'u' {
			return nil
		}
		return newNode(kindAccessor, "unsafeMutableAddressor", v)
	case 'l':
		if d.next() != 'u' {
			return nil
		}
		return newNode(kindAccessor, "unsafeAddressor", v)
	}
	if name, ok := accessorNames[c]; ok {
		return newNode(kindAccessor, name, v)
	}
	return nil
}

func (d *demangler) demangleGenericSignature() *node {
	sig := newNode(kindGenericSignature, "")
	for {
		r := d.popKind(kindConformance)
		if r == nil {
			break
		}
		sig.children = append([]*node{r}, sig.children...)
	}
	return sig
}

// demangleRequirement handles conformance requirements of the first generic
// parameter ("Rz").
func (d *demangler) demangleRequirement() *node {
	if !d.nextIf('z') {
		return nil
	}
	proto := d.popKind(kindType)
	if proto == nil || proto.child(0).kind != kindProtocol {
		return nil
	}
	return newNode(kindConformance, genericParamName(0, 0), proto)
}

func (d *demangler) wrapType(prefix string) *node {
	t := d.popKind(kindType)
	if t == nil {
		return nil
	}
	return newNode(kindTypeWrapper, prefix, t)
}

func (d *demangler) demangleMetadata() *node {
	switch d.next() {
	case 'a':
		return d.wrapType("type metadata accessor for ")
	case 'n':
		return d.wrapType("nominal type descriptor for ")
	}
	return nil
}

func (d *demangler) demangleThunk() *node {
	switch d.next() {
	case 'A':
		return newNode(kindAttribute, "partial apply forwarder for ")
	case 'm':
		return newNode(kindAttribute, "merged ")
	case 'q':
		return newNode(kindAttribute, "method descriptor for ")
	case 'j':
		return newNode(kindAttribute, "dispatch thunk of ")
	}
	return nil
}

// genericParamName returns the name Swift uses for the generic parameter at
// depth and index: A, B, ..., Z, AA, ... followed by the depth if nonzero.
func genericParamName(depth, index int) string {
	var name []byte
	for {
		name = append(name, byte('A'+index%26))
		index /= 26
		if index == 0 {
			break
		}
	}
	if depth != 0 {
		name = append(name, itoa(depth)...)
	}
	return string(name)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}
