package executor

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	language "github.com/hanpama/bookgraph/internal/language"
	schema "github.com/hanpama/bookgraph/internal/schema"
)

type Path []PathElement

// PathElement is a response key (string) or a list index (int).
type PathElement any

// String renders the path as "books.0.author".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			parts[i] = v
		case int:
			parts[i] = strconv.Itoa(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ".")
}

// executionState holds the state during query execution
type executionState struct {
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	errors         []GraphQLError
}

// Executor runs operations against an immutable schema. It holds no
// per-request state and is safe for concurrent use.
type Executor struct {
	schema *schema.Schema
}

func NewExecutor(schema *schema.Schema) *Executor {
	return &Executor{schema: schema}
}

// ExecuteRequest executes the selected operation of document.
//
// Request-level failures (unknown operation, missing root type, variable
// coercion) return a result without data. Field-level failures are recorded
// in Errors at their response path and the rest of the tree still resolves.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation, err := getOperation(document, operationName)
	if err != nil {
		return requestError("%s", err)
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	default:
		return requestError("unsupported operation type: %s", operation.Operation)
	}
	if rootType == nil {
		return requestError("root type not found for %s operation", operation.Operation)
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return requestError("%s", err)
	}

	state := &executionState{
		schema:         e.schema,
		document:       document,
		variableValues: coercedVariableValues,
		context:        ctx,
	}

	// Mutation root fields run serially in request order; since resolution is
	// synchronous, query root fields run the same way.
	data, ok := executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{})
	if !ok {
		return &ExecutionResult{Data: nil, Errors: state.errors}
	}
	return &ExecutionResult{Data: data, Errors: state.errors}
}

// executeSelectionSet completes every collected field of objectType against
// objectValue. It reports false when a non-null field failed, in which case
// the caller must treat the whole object as null.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) (Object, bool) {
	groups := collectFields(state, objectType, selectionSet)
	result := make(Object, 0, len(groups))
	for _, group := range groups {
		value, ok := executeField(state, objectType, objectValue, group.Fields, appendPath(path, group.ResponseName))
		if !ok {
			return nil, false
		}
		result = append(result, ObjectEntry{Key: group.ResponseName, Value: value})
	}
	return result, true
}

// executeField resolves and completes one response key. The boolean is false
// when the null must propagate to the parent.
func executeField(state *executionState, objectType *schema.Type, objectValue any, fields []*language.Field, path Path) (any, bool) {
	field := fields[0]
	fieldName := field.Name

	// Handle __typename meta field
	if fieldName == "__typename" {
		return objectType.Name, true
	}

	fieldDef := objectType.Field(fieldName)
	if fieldDef == nil {
		state.addError(&schema.FieldNotFoundError{TypeName: objectType.Name, FieldName: fieldName}, path, CodeFieldNotFound)
		return nil, true
	}

	if err := checkSelection(state, fieldDef, fields); err != nil {
		return state.fieldError(fieldDef, err, path, CodeSelection)
	}

	if err := state.context.Err(); err != nil {
		return state.fieldError(fieldDef, err, path, CodeResolver)
	}

	argumentValues, err := coerceArgumentValues(state, objectType, fieldDef, field.Arguments)
	if err != nil {
		return state.fieldError(fieldDef, err, path, CodeCoercion)
	}

	resolvedValue, err := resolveField(state, fieldDef, objectValue, argumentValues)
	if err != nil {
		return state.fieldError(fieldDef, err, path, CodeResolver)
	}

	return completeValue(state, objectType.Name+"."+fieldName, fieldDef.Type, fields, resolvedValue, path)
}

// checkSelection rejects an object field without subfields and a leaf field
// with them. The resolver does not run for a rejected field.
func checkSelection(state *executionState, fieldDef *schema.Field, fields []*language.Field) error {
	typeObj := state.schema.Types[schema.GetNamedType(fieldDef.Type)]
	if typeObj == nil {
		return nil
	}
	selected := len(mergeSelectionSets(fields)) > 0
	switch {
	case typeObj.Kind == schema.TypeKindObject && !selected:
		return fmt.Errorf("Field %q of type %q must have a selection of subfields.", fieldDef.Name, fieldDef.Type.String())
	case typeObj.Kind.IsLeaf() && selected:
		return fmt.Errorf("Field %q must not have a selection since type %q has no subfields.", fieldDef.Name, fieldDef.Type.String())
	}
	return nil
}

// resolveField invokes the field's resolver, or projects the same-named
// property of the source when the field has none.
func resolveField(state *executionState, fieldDef *schema.Field, source any, args map[string]any) (any, error) {
	resolver := fieldDef.Resolver
	if resolver == nil {
		resolver = schema.PropertyResolver(fieldDef.Name)
	}
	return resolver.Resolve(state.context, source, args)
}

// fieldError records err for a field that could not be resolved. The field
// becomes null, which propagates when its type is non-null.
func (state *executionState) fieldError(fieldDef *schema.Field, err error, path Path, code string) (any, bool) {
	state.addError(err, path, code)
	return nil, !schema.IsNonNull(fieldDef.Type)
}

// completeValue completes a resolved value against fieldType. fieldCoord
// names the field ("Book.name") for non-null messages.
func completeValue(state *executionState, fieldCoord string, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) (any, bool) {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			state.addError(&schema.NullabilityError{Field: fieldCoord}, path, CodeNullability)
			return nil, false
		}
		completed, ok := completeValue(state, fieldCoord, schema.Unwrap(fieldType), fields, result, path)
		if !ok || isNullish(completed) {
			// Error already recorded for the inner value; propagate only
			return nil, false
		}
		return completed, true
	}

	if isNullish(result) {
		return nil, true
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldCoord, fieldType, fields, result, path)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.addError(fmt.Errorf("unknown type: %s", namedType), path, CodeResolver)
		return nil, true
	}

	switch {
	case typeObj.Kind.IsLeaf():
		serialized, err := schema.SerializeLeaf(typeObj, result)
		if err != nil {
			state.addError(err, path, CodeCoercion)
			return nil, true
		}
		return serialized, true
	case typeObj.Kind == schema.TypeKindObject:
		sub, ok := executeSelectionSet(state, typeObj, mergeSelectionSets(fields), result, path)
		if !ok {
			// A non-null child failed; this nullable object absorbs it.
			return nil, true
		}
		return sub, true
	default:
		state.addError(fmt.Errorf("cannot complete value of unexpected type: %s", typeObj.Kind), path, CodeResolver)
		return nil, true
	}
}

// completeListValue completes each element with an index-aware path. A null
// propagating out of an element nulls the list itself.
func completeListValue(state *executionState, fieldCoord string, listType *schema.TypeRef, fields []*language.Field, result any, path Path) (any, bool) {
	rv := reflect.ValueOf(result)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		state.addError(fmt.Errorf("expected list value for %s, got %T", fieldCoord, result), path, CodeCoercion)
		return nil, true
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, ok := completeValue(state, fieldCoord, inner, fields, rv.Index(i).Interface(), appendPath(path, i))
		if !ok {
			return nil, true
		}
		completed[i] = v
	}
	return completed, true
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) (*language.OperationDefinition, error) {
	if document == nil || len(document.Operations) == 0 {
		return nil, fmt.Errorf("document contains no operations")
	}
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0], nil
		}
		return nil, fmt.Errorf("operation name is required when the document contains multiple operations")
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op, nil
		}
	}
	return nil, fmt.Errorf("operation %q not found", operationName)
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return schema.NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

// Helper function to add an error to the execution state
func (state *executionState) addError(err error, path Path, code string) {
	state.errors = append(state.errors, locatedError(err, path, code))
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
