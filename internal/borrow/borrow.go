// Package borrow implements C6: a four-phase ownership, aliasing, and
// lifetime analysis run on the typed AST after type checking (§4.6).
// Each phase is modeled as a Pass run in a fixed order over every
// function/method body in the program; failing a phase aborts the
// remaining phases for that run (§4.6 "failing any phase aborts
// compilation").
package borrow

import (
	"github.com/vexlang/vexc/internal/ast"
	"github.com/vexlang/vexc/internal/diag"
	"github.com/vexlang/vexc/internal/sema"
	"github.com/vexlang/vexc/internal/types"
)

// body is one function/method to analyze, paired with the receiver/param
// bindings its scope starts with.
type body struct {
	Params      []*ast.Param
	ParamTypes  []types.Type
	Result      types.Type
	Block       *ast.BlockStmt
	SelfName    string // "" for a free function
	SelfType    types.Type
	SelfMutable bool
}

// Pass is one of the four ordered phases of §4.6.
type Pass interface {
	Name() string
	Run(b *body, ctx *sema.Context, sink *diag.Sink)
}

// Run drives all four phases over every function and method body
// registered in ctx (§4.6). It is meant to run after sema.Run and before
// monomorphization; the caller is expected to check sink.HasErrors()
// between stages of its own pipeline the same way it does after sema.
func Run(ctx *sema.Context, sink *diag.Sink) {
	bodies := collectBodies(ctx)
	passes := []Pass{
		&immutabilityPass{},
		&movesPass{},
		&aliasingPass{},
		&lifetimesPass{},
	}
	for _, pass := range passes {
		before := len(sink.All())
		for _, b := range bodies {
			pass.Run(b, ctx, sink)
		}
		if len(sink.All()) > before {
			return
		}
	}
}

func collectBodies(ctx *sema.Context) []*body {
	var out []*body
	for _, info := range ctx.Functions {
		decl, ok := info.Decl.(*ast.FunctionDecl)
		if !ok || decl.Body == nil {
			continue
		}
		out = append(out, &body{
			Params:     decl.Params,
			ParamTypes: info.Params,
			Result:     info.Result,
			Block:      decl.Body,
		})
	}
	for _, infos := range ctx.InherentMethods {
		for _, info := range infos {
			decl, ok := info.Decl.(*ast.MethodDecl)
			if !ok || decl.Body == nil {
				continue
			}
			b := &body{
				Params:      decl.Params,
				ParamTypes:  info.Params,
				Result:      info.Result,
				Block:       decl.Body,
				SelfName:    "self",
				SelfType:    info.Receiver,
				SelfMutable: info.ReceiverMut,
			}
			out = append(out, b)
		}
	}
	return out
}
