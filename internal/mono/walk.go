package mono

import "github.com/vexlang/vexc/internal/ast"

// walk visits every expression reachable from n (a statement, block, or
// expression), calling visit on each one post-order-ish (parents are
// visited after their children have had a chance to register a call, but
// the order does not matter to any caller in this package — every visit
// is independent).
func walk(n ast.Node, visit func(ast.Expr)) {
	switch x := n.(type) {
	case nil:
		return
	case *ast.BlockStmt:
		for _, s := range x.Stmts {
			walk(s, visit)
		}
	case *ast.LetStmt:
		walk(x.Value, visit)
	case *ast.AssignStmt:
		walk(x.Target, visit)
		walk(x.Value, visit)
	case *ast.ExprStmt:
		walk(x.X, visit)
	case *ast.ReturnStmt:
		if x.Value != nil {
			walk(x.Value, visit)
		}
	case *ast.DeferStmt:
		walk(x.Call, visit)
	case *ast.IfLetStmt:
		walk(x.Value, visit)
		if x.Guard != nil {
			walk(x.Guard, visit)
		}
		walk(x.Then, visit)
		walk(x.Else, visit)
	case *ast.ForStmt:
		walk(x.Iter, visit)
		walk(x.Body, visit)
	case *ast.WhileStmt:
		walk(x.Cond, visit)
		walk(x.Body, visit)
	case *ast.LoopStmt:
		walk(x.Body, visit)
	case *ast.UnsafeStmt:
		walk(x.Body, visit)
	case *ast.BreakStmt, *ast.ContinueStmt:
		return

	case *ast.CallExpr:
		walk(x.Callee, visit)
		for _, a := range x.Args {
			walk(a, visit)
		}
		visit(x)
	case *ast.MethodCallExpr:
		walk(x.Receiver, visit)
		for _, a := range x.Args {
			walk(a, visit)
		}
		visit(x)
	case *ast.FieldAccessExpr:
		walk(x.Receiver, visit)
		visit(x)
	case *ast.VariantExpr:
		for _, a := range x.Args {
			walk(a, visit)
		}
		visit(x)
	case *ast.IndexExpr:
		walk(x.Receiver, visit)
		walk(x.Index, visit)
		visit(x)
	case *ast.RangeExpr:
		if x.From != nil {
			walk(x.From, visit)
		}
		if x.To != nil {
			walk(x.To, visit)
		}
		visit(x)
	case *ast.BinaryExpr:
		walk(x.Left, visit)
		walk(x.Right, visit)
		visit(x)
	case *ast.UnaryExpr:
		walk(x.Operand, visit)
		visit(x)
	case *ast.IfExpr:
		walk(x.Cond, visit)
		walk(x.Then, visit)
		if x.Else != nil {
			walk(x.Else, visit)
		}
		visit(x)
	case *ast.MatchExpr:
		walk(x.Scrutinee, visit)
		for _, arm := range x.Arms {
			if arm.Guard != nil {
				walk(arm.Guard, visit)
			}
			walk(arm.Body, visit)
		}
		visit(x)
	case *ast.BlockExpr:
		walk(x.Block, visit)
		visit(x)
	case *ast.StructLiteralExpr:
		for _, f := range x.Fields {
			walk(f.Value, visit)
		}
		visit(x)
	case *ast.TupleLiteralExpr:
		for _, e := range x.Elems {
			walk(e, visit)
		}
		visit(x)
	case *ast.ArrayLiteralExpr:
		if x.Repeat != nil {
			walk(x.Repeat, visit)
			walk(x.Count, visit)
		}
		for _, e := range x.Elems {
			walk(e, visit)
		}
		visit(x)
	case *ast.AwaitExpr:
		walk(x.Operand, visit)
		visit(x)
	case *ast.CastExpr:
		walk(x.Operand, visit)
		visit(x)
	case *ast.GoExpr:
		walk(x.Call, visit)
		visit(x)
	case *ast.Ident, *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral,
		*ast.BoolLiteral, *ast.NilLiteral:
		if e, ok := n.(ast.Expr); ok {
			visit(e)
		}
	case *ast.InterpStringLiteral:
		for _, part := range x.Parts {
			if part.Expr != nil {
				walk(part.Expr, visit)
			}
		}
		visit(x)
	}
}
