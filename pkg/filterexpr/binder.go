// Package filterexpr binds CEL-style filter and order_by strings from list
// requests onto typed query parameter structs. Filters are restricted to
// conjunctions of whitelisted field predicates; anything else is rejected
// before it reaches a repository.
package filterexpr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Msg is any request carrying raw filter and order_by inputs.
type Msg interface {
	GetFilter() string
	GetOrderBy() string
}

// ValueKind describes the kind of literal a filter field accepts.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindNumber    ValueKind = "number"
	KindTimestamp ValueKind = "timestamp"
)

// Op is a supported predicate operation.
type Op string

const (
	OpEQ       Op = "=="
	OpGTE      Op = ">="
	OpLTE      Op = "<="
	OpContains Op = "contains"
	OpSW       Op = "startsWith"
	OpIN       Op = "in"
)

// Field maps one filter identifier to a params struct field per operation.
type Field struct {
	Kind ValueKind
	Ops  map[Op]string
}

// OrderSchema whitelists order keys and names the default.
type OrderSchema struct {
	Default     string
	DefaultDesc bool
	Keys        []string
}

// Schema aggregates the filter and order rules for one resource.
type Schema struct {
	Filter map[string]Field
	Order  OrderSchema
}

var timeType = reflect.TypeOf(time.Time{})

// Bind parses msg's filter and order_by and populates the params struct.
// The params struct must expose an exported field for every mapped predicate
// plus OrderKey string and OrderDesc bool.
func Bind[M Msg, P any](msg M, params *P, schema Schema) error {
	if params == nil {
		return errors.New("params must not be nil")
	}
	if err := bindFilter(params, msg.GetFilter(), schema.Filter); err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	if err := bindOrder(params, msg.GetOrderBy(), schema.Order); err != nil {
		return fmt.Errorf("order_by: %w", err)
	}
	return nil
}

type predicate struct {
	Field string
	Op    Op
	Value any
}

func bindFilter(params any, filter string, fields map[string]Field) error {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	if len(fields) == 0 {
		return errors.New("no filterable fields defined")
	}

	env, err := buildEnv(fields)
	if err != nil {
		return err
	}
	ast, issues := env.Parse(filter)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("invalid filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return err
	}
	conjuncts, err := splitConjuncts(parsed.GetExpr())
	if err != nil {
		return err
	}

	dest := reflect.ValueOf(params).Elem()
	if dest.Kind() != reflect.Struct {
		return errors.New("params must point to a struct")
	}

	for _, expr := range conjuncts {
		pred, err := parsePredicate(expr)
		if err != nil {
			return err
		}
		rule, ok := fields[pred.Field]
		if !ok {
			return fmt.Errorf("field %q is not allowed", pred.Field)
		}
		target, ok := rule.Ops[pred.Op]
		if !ok {
			return fmt.Errorf("operator %q is not allowed for field %q", string(pred.Op), pred.Field)
		}
		if err := checkLiteral(rule.Kind, pred.Op, pred.Value); err != nil {
			return fmt.Errorf("field %q: %w", pred.Field, err)
		}
		field := dest.FieldByName(target)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("params struct %s has no settable field %q", dest.Type(), target)
		}
		if err := assign(field, pred.Value); err != nil {
			return fmt.Errorf("field %q: %w", target, err)
		}
	}
	return nil
}

func buildEnv(fields map[string]Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for name, rule := range fields {
		var celType *cel.Type
		switch rule.Kind {
		case KindString:
			celType = cel.StringType
		case KindNumber:
			celType = cel.DoubleType
		case KindTimestamp:
			celType = cel.TimestampType
		default:
			return nil, fmt.Errorf("field %q: unsupported kind %s", name, rule.Kind)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

// splitConjuncts flattens nested AND chains into a predicate list. OR,
// negation and ternaries are rejected.
func splitConjuncts(expr *exprpb.Expr) ([]*exprpb.Expr, error) {
	if expr == nil {
		return nil, errors.New("empty expression")
	}
	call := expr.GetCallExpr()
	if call == nil {
		return []*exprpb.Expr{expr}, nil
	}
	switch call.Function {
	case "_&&_":
		var out []*exprpb.Expr
		for _, arg := range call.Args {
			sub, err := splitConjuncts(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	case "_||_", "_?_:_", "!_":
		return nil, fmt.Errorf("operator %q is not supported; only AND is allowed", call.Function)
	default:
		return []*exprpb.Expr{expr}, nil
	}
}

func parsePredicate(expr *exprpb.Expr) (predicate, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return predicate{}, errors.New("expected a comparison or function call")
	}
	switch call.Function {
	case "_==_":
		return parseBinary(call, OpEQ)
	case "_>=_":
		return parseBinary(call, OpGTE)
	case "_<=_":
		return parseBinary(call, OpLTE)
	case "_in_", "@in":
		return parseIn(call)
	case "contains":
		return parseReceiverCall(call, OpContains)
	case "startsWith":
		return parseReceiverCall(call, OpSW)
	default:
		return predicate{}, fmt.Errorf("function %q is not supported", call.Function)
	}
}

func parseBinary(call *exprpb.Expr_Call, op Op) (predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, fmt.Errorf("operator %q expects two operands", string(op))
	}
	name, err := identName(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	value, err := literal(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{Field: name, Op: op, Value: value}, nil
}

func parseIn(call *exprpb.Expr_Call) (predicate, error) {
	if call.Target != nil || len(call.Args) != 2 {
		return predicate{}, errors.New("in operator expects two operands")
	}
	name, err := identName(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	value, err := literal(call.Args[1])
	if err != nil {
		return predicate{}, err
	}
	return predicate{Field: name, Op: OpIN, Value: value}, nil
}

// parseReceiverCall handles field.contains("x") and field.startsWith("x").
func parseReceiverCall(call *exprpb.Expr_Call, op Op) (predicate, error) {
	if call.Target == nil || len(call.Args) != 1 {
		return predicate{}, fmt.Errorf("%s expects a receiver and one argument", string(op))
	}
	name, err := identName(call.Target)
	if err != nil {
		return predicate{}, err
	}
	value, err := literal(call.Args[0])
	if err != nil {
		return predicate{}, err
	}
	str, ok := value.(string)
	if !ok {
		return predicate{}, fmt.Errorf("%s requires a string literal", string(op))
	}
	return predicate{Field: name, Op: op, Value: str}, nil
}

func identName(expr *exprpb.Expr) (string, error) {
	ident := expr.GetIdentExpr()
	if ident == nil {
		return "", errors.New("field reference must be an identifier")
	}
	return ident.GetName(), nil
}

func literal(expr *exprpb.Expr) (any, error) {
	if constant := expr.GetConstExpr(); constant != nil {
		switch constant.ConstantKind.(type) {
		case *exprpb.Constant_StringValue:
			return constant.GetStringValue(), nil
		case *exprpb.Constant_Int64Value:
			return float64(constant.GetInt64Value()), nil
		case *exprpb.Constant_Uint64Value:
			return float64(constant.GetUint64Value()), nil
		case *exprpb.Constant_DoubleValue:
			return constant.GetDoubleValue(), nil
		default:
			return nil, fmt.Errorf("literal type %T is not supported", constant.ConstantKind)
		}
	}
	if list := expr.GetListExpr(); list != nil {
		values := make([]string, len(list.GetElements()))
		for i, elem := range list.GetElements() {
			val, err := literal(elem)
			if err != nil {
				return nil, err
			}
			str, ok := val.(string)
			if !ok {
				return nil, errors.New("list elements must be strings")
			}
			values[i] = str
		}
		return values, nil
	}
	if call := expr.GetCallExpr(); call != nil && call.Function == "timestamp" {
		if call.Target != nil || len(call.Args) != 1 {
			return nil, errors.New("timestamp() expects a single string argument")
		}
		arg := call.Args[0].GetConstExpr()
		if arg == nil {
			return nil, errors.New("timestamp() argument must be a string literal")
		}
		t, err := time.Parse(time.RFC3339, arg.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("timestamp literal %q is not RFC3339", arg.GetStringValue())
		}
		return t, nil
	}
	return nil, errors.New("value must be a literal, list, or timestamp() call")
}

func checkLiteral(kind ValueKind, op Op, value any) error {
	if op == OpIN {
		list, ok := value.([]string)
		if !ok || len(list) == 0 {
			return errors.New("in expects a non-empty list of strings")
		}
		return nil
	}
	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return errors.New("expected string literal")
		}
	case KindNumber:
		if _, ok := value.(float64); !ok {
			return errors.New("expected number literal")
		}
	case KindTimestamp:
		if _, ok := value.(time.Time); !ok {
			return errors.New("expected timestamp literal")
		}
	}
	return nil
}

func assign(field reflect.Value, value any) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return assign(field.Elem(), value)
	}
	switch v := value.(type) {
	case string:
		if field.Kind() != reflect.String {
			return fmt.Errorf("expected string destination, got %s", field.Kind())
		}
		field.SetString(v)
	case []string:
		if field.Kind() != reflect.Slice || field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("expected []string destination, got %s", field.Type())
		}
		field.Set(reflect.ValueOf(append([]string(nil), v...)))
	case float64:
		return assignNumeric(field, v)
	case time.Time:
		if field.Type() != timeType {
			return fmt.Errorf("expected time.Time destination, got %s", field.Type())
		}
		field.Set(reflect.ValueOf(v))
	default:
		return fmt.Errorf("unsupported literal type %T", value)
	}
	return nil
}

func assignNumeric(field reflect.Value, value float64) error {
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		field.SetFloat(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if math.Trunc(value) != value {
			return fmt.Errorf("cannot assign %v to integer field", value)
		}
		field.SetInt(int64(value))
	default:
		return fmt.Errorf("numeric destination required, got %s", field.Kind())
	}
	return nil
}
