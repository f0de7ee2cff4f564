package executor

import (
	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// fieldGroup is every field node that shares one response name.
type fieldGroup struct {
	ResponseName string
	Fields       []*language.Field
}

// groupedFields keeps field groups in first-seen request order.
type groupedFields struct {
	groups []fieldGroup
	index  map[string]int
}

func (g *groupedFields) add(responseName string, field *language.Field) {
	if i, ok := g.index[responseName]; ok {
		g.groups[i].Fields = append(g.groups[i].Fields, field)
		return
	}
	g.index[responseName] = len(g.groups)
	g.groups = append(g.groups, fieldGroup{ResponseName: responseName, Fields: []*language.Field{field}})
}

// collectFields flattens selectionSet for objectType, expanding fragments
// and applying @skip and @include.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) []fieldGroup {
	g := &groupedFields{index: make(map[string]int)}
	collectInto(state, objectType, selectionSet, g, make(map[string]bool))
	return g.groups
}

func collectInto(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, g *groupedFields, visited map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !included(state, sel.Directives) {
				continue
			}
			name := sel.Alias
			if name == "" {
				name = sel.Name
			}
			g.add(name, sel)

		case *language.InlineFragment:
			if !included(state, sel.Directives) || !typeConditionMatches(sel.TypeCondition, objectType) {
				continue
			}
			collectInto(state, objectType, sel.SelectionSet, g, visited)

		case *language.FragmentSpread:
			if !included(state, sel.Directives) || visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true

			def := state.document.Fragments.ForName(sel.Name)
			if def == nil || !typeConditionMatches(def.TypeCondition, objectType) || !included(state, def.Directives) {
				continue
			}
			collectInto(state, objectType, def.SelectionSet, g, visited)
		}
	}
}

// typeConditionMatches compares by name; every composite type is an object.
func typeConditionMatches(condition string, objectType *schema.Type) bool {
	return condition == "" || condition == objectType.Name
}

// included evaluates @skip(if:) and @include(if:). A missing or non-boolean
// condition leaves the node in.
func included(state *executionState, directives language.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil && directiveCondition(state, d) == true {
		return false
	}
	if d := directives.ForName("include"); d != nil && directiveCondition(state, d) == false {
		return false
	}
	return true
}

func directiveCondition(state *executionState, d *language.Directive) any {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return nil
	}
	return valueFromAST(state, arg.Value)
}
