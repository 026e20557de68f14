// Package noexit defines an analyzer that reports os.Exit calls outside of
// package main helpers. main.main must return so deferred cleanup such as the
// monitor's final summary always runs, and library packages must return errors.
package noexit

import (
	"fmt"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer is the noexit analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "reports os.Exit calls in main.main and in non-main packages",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg == nil {
		return nil, nil
	}
	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, fmt.Errorf("failed to assert type: expected *inspector.Inspector")
	}
	isMainPkg := pass.Pkg.Name() == "main"

	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fd, ok := n.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			return
		}
		isMainFunc := isMainPkg && fd.Recv == nil && fd.Name != nil && fd.Name.Name == "main"
		if isMainPkg && !isMainFunc {
			return
		}

		ast.Inspect(fd.Body, func(nn ast.Node) bool {
			call, ok := nn.(*ast.CallExpr)
			if !ok || !isOsExitCall(pass, call) {
				return true
			}
			if isMainFunc {
				pass.Reportf(call.Pos(), "os.Exit in main.main skips deferred calls; return from main instead")
			} else {
				pass.Reportf(call.Pos(), "os.Exit in package %s; return an error to the caller instead", pass.Pkg.Name())
			}
			return true
		})
	})

	return nil, nil
}

func isOsExitCall(pass *analysis.Pass, call *ast.CallExpr) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil || pass.TypesInfo == nil {
		return false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}
