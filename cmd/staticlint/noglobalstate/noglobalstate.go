// Package noglobalstate defines an analyzer that reports package-level
// variables holding shared mutable state: maps, slices, channels and
// pointers. Such state belongs in a value that is constructed and passed
// explicitly. Package main is exempt, as are _test.go files.
package noglobalstate

import (
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// DefaultAllowedTypes lists named types whose pointers may be kept in
// package-level variables: analyzers themselves and the process logger.
const DefaultAllowedTypes = "golang.org/x/tools/go/analysis.Analyzer,go.uber.org/zap.SugaredLogger"

var Analyzer = &analysis.Analyzer{
	Name: "noglobalstate",
	Doc:  "reports package-level maps, slices, channels and pointers outside package main",
	Run:  run,
}

var allowedTypes string

func init() {
	Analyzer.Flags.StringVar(
		&allowedTypes,
		"allowtypes",
		DefaultAllowedTypes,
		"comma-separated list of import/path.Type whose pointers may be package-level variables",
	)
}

func parseAllowed(raw string) map[string]bool {
	result := map[string]bool{}
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			result[name] = true
		}
	}
	return result
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() == "main" {
		return nil, nil
	}
	allowed := parseAllowed(allowedTypes)

	for _, file := range pass.Files {
		filename := pass.Fset.File(file.Pos()).Name()
		if isGoBuildCacheFile(filename) || strings.HasSuffix(filename, "_test.go") {
			continue
		}

		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				continue
			}

			for _, spec := range gen.Specs {
				valueSpec, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, name := range valueSpec.Names {
					if name.Name == "_" {
						continue
					}
					obj := pass.TypesInfo.Defs[name]
					if obj == nil {
						continue
					}
					if kind := mutableKind(obj.Type(), allowed); kind != "" {
						pass.Reportf(name.Pos(), "package-level variable %s holds a %s", name.Name, kind)
					}
				}
			}
		}
	}

	return nil, nil
}

// mutableKind names the kind of shared state t carries, or returns "".
func mutableKind(t types.Type, allowed map[string]bool) string {
	switch underlying := t.Underlying().(type) {
	case *types.Map:
		return "map"
	case *types.Slice:
		return "slice"
	case *types.Chan:
		return "channel"
	case *types.Pointer:
		if named, ok := types.Unalias(underlying.Elem()).(*types.Named); ok && allowed[qualifiedName(named)] {
			return ""
		}
		return "pointer"
	default:
		return ""
	}
}

func qualifiedName(named *types.Named) string {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

func isGoBuildCacheFile(path string) bool {
	path = filepath.ToSlash(path)
	return strings.Contains(path, "/go-build/") || strings.Contains(path, `\go-build\`)
}
