// Package filter translates AIP-160 history filters into SQLite conditions.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// HistoryDeclarations returns the fields a history filter may reference.
func HistoryDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("code", filtering.TypeString),
		filtering.DeclareIdent("seed_source", filtering.TypeString),
		filtering.DeclareIdent("surface", filtering.TypeString),
		filtering.DeclareIdent("text", filtering.TypeString),
		filtering.DeclareIdent("seed", filtering.TypeInt),
		filtering.DeclareIdent("loops", filtering.TypeInt),
		filtering.DeclareIdent("value", filtering.TypeFloat),
		filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
	)
}

// SQLCondition is a WHERE clause fragment with positional parameters.
type SQLCondition struct {
	Clause string
	Params []any
}

// fieldMapping maps filter fields to history columns.
var fieldMapping = map[string]string{
	"code":        "code",
	"seed_source": "seed_source",
	"surface":     "surface",
	"text":        "text",
	"seed":        "seed",
	"loops":       "loops",
	"value":       "value",
	"created_at":  "created_at",
}

// ParseHistoryFilter parses filterStr and returns the matching SQL condition.
// An empty filter yields an empty condition.
func ParseHistoryFilter(filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}

	decls, err := HistoryDeclarations()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("parse filter: %w", err)
	}

	return translateExpr(filter.CheckedExpr.Expr)
}

func translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

var comparisons = map[string]string{
	"_==_": "=", "=": "=",
	"_!=_": "!=", "!=": "!=",
	"_<_": "<", "<": "<",
	"_<=_": "<=", "<=": "<=",
	"_>_": ">", ">": ">",
	"_>=_": ">=", ">=": ">=",
}

func translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateJunction(call.Args, "AND")
	case "_||_", "OR":
		return translateJunction(call.Args, "OR")
	case "NOT":
		if len(call.Args) != 1 {
			return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := translateExpr(call.Args[0])
		if err != nil {
			return SQLCondition{}, err
		}
		return SQLCondition{Clause: "NOT " + inner.Clause, Params: inner.Params}, nil
	}
	if op, ok := comparisons[call.Function]; ok {
		return translateComparison(call.Args, op)
	}
	return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.Function)
}

func translateJunction(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("%s requires 2 arguments", op)
	}

	left, err := translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	column, ok := fieldMapping[field]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}
	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// extractTimestampValue returns Unix milliseconds, the created_at encoding.
func extractTimestampValue(e *expr.Expr) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("nil timestamp argument")
	}
	kind, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
	str, ok := kind.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, str.StringValue)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp format: %s", str.StringValue)
	}
	return t.UTC().UnixMilli(), nil
}
