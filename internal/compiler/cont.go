package compiler

import "github.com/dave/jennifer/jen"

// Cont is a success continuation: the code to run once a node has matched.
// It is either the name of a func() bool already in scope or a block of
// statements ending in a return.
type Cont struct {
	name string
	body *contBody
	used *bool // set for continuations bound to a local
}

// contBody is built on first use, so a continuation that is dropped (a
// strict stub, a class that can never match) emits nothing and references
// nothing.
type contBody struct {
	build func() []jen.Code
	code  []jen.Code
}

func (b *contBody) get() []jen.Code {
	if b.build != nil {
		b.code = b.build()
		b.build = nil
	}
	return b.code
}

// named refers to a func() bool that is in scope under name.
func named(name string) Cont {
	return Cont{name: name}
}

// inline wraps statements that end in a return.
func inline(body ...jen.Code) Cont {
	return Cont{body: &contBody{code: body}}
}

// deferred is a continuation whose statements are compiled on first use.
func deferred(build func() []jen.Code) Cont {
	return Cont{body: &contBody{build: build}}
}

// accept is the continuation that reports a successful match.
func accept() Cont {
	return inline(jen.Return(jen.True()))
}

// bind returns a continuation referring to a local called name. Whether any
// code referenced it is reported by Used.
func bind(name string) Cont {
	used := false
	return Cont{name: name, used: &used}
}

// Named reports whether the continuation is an identifier.
func (k Cont) Named() bool {
	return k.name != ""
}

// Used reports whether a bound continuation was referenced.
func (k Cont) Used() bool {
	return k.used == nil || *k.used
}

func (k Cont) mark() {
	if k.used != nil {
		*k.used = true
	}
}

// Func renders the continuation as a func() bool expression.
func (k Cont) Func() jen.Code {
	k.mark()
	if k.name != "" {
		return jen.Id(k.name)
	}
	return jen.Func().Params().Bool().Block(k.body.get()...)
}

// Stmts renders the continuation as statements ending in a return.
func (k Cont) Stmts() []jen.Code {
	k.mark()
	if k.name != "" {
		return []jen.Code{jen.Return(jen.Id(k.name).Call())}
	}
	return append([]jen.Code(nil), k.body.get()...)
}
