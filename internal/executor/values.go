package executor

import (
	"fmt"
	"strconv"
	"strings"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

// coerceVariableValues coerces variable values according to their types
func coerceVariableValues(
	sch *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	if variableValues == nil {
		variableValues = make(map[string]any)
	}
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if v2, ok2 := variableValues["$"+name]; ok2 {
				val = v2
				ok = true
			}
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val = astValueToGo(varDef.DefaultValue)
			} else if t.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		cv, err := schema.CoerceInput(sch, val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s: %w", name, t.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces the arguments of one field. Any failure fails
// the whole field, so the first error is returned.
func coerceArgumentValues(
	state *executionState,
	objectType *schema.Type,
	fieldDef *schema.Field,
	arguments language.ArgumentList,
) (map[string]any, error) {
	coerced := make(map[string]any, len(fieldDef.Arguments))
	for _, arg := range arguments {
		if fieldDef.Argument(arg.Name) == nil {
			return nil, fmt.Errorf("unknown argument %q on field %s.%s", arg.Name, objectType.Name, fieldDef.Name)
		}
	}
	for _, argDef := range fieldDef.Arguments {
		name := argDef.Name
		arg := arguments.ForName(name)

		var (
			val      any
			provided bool
		)
		if arg != nil {
			val, provided = argumentValue(state, arg.Value)
		}
		if !provided {
			if argDef.DefaultValue != nil {
				coerced[name] = argDef.DefaultValue
			} else if schema.IsNonNull(argDef.Type) {
				return nil, fmt.Errorf("argument %q of required type %s was not provided", name, argDef.Type)
			}
			continue
		}
		cv, err := schema.CoerceInput(state.schema, val, argDef.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// argumentValue converts an argument literal to Go. A reference to a variable
// that was neither provided nor defaulted counts as an absent argument.
func argumentValue(state *executionState, value *language.Value) (any, bool) {
	if value != nil && value.Kind == language.Variable {
		v, ok := state.variableValues[value.Raw]
		return v, ok
	}
	return valueFromAST(state, value), true
}

// valueFromAST converts an AST value to a runtime value, substituting
// variables (also inside list and object literals).
func valueFromAST(state *executionState, value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		name := strings.TrimPrefix(value.Raw, "$")
		return state.variableValues[name]
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = valueFromAST(state, c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = valueFromAST(state, f.Value)
		}
		return m
	default:
		return astValueToGo(value)
	}
}

// astValueToGo converts a constant AST value to a Go value. Int literals that
// overflow int64 keep their raw text so that coercion reports them.
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, err := strconv.ParseInt(value.Raw, 10, 64)
		if err != nil {
			return value.Raw
		}
		return int(iv)
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}
