package condition

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	wf "axonflow/workflow/engine/workflow"
)

// Evaluate runs strict left-to-right composition with
// no operator precedence. An empty list is vacuously true.
//
//	acc = connector_i(acc, cond_{i+1})
func Evaluate(conditions []wf.Condition, root Root) bool {
	if len(conditions) == 0 {
		return true
	}

	acc := evalOne(conditions[0], root)
	for i := 1; i < len(conditions); i++ {
		next := evalOne(conditions[i], root)
		switch conditions[i-1].Connector {
		case wf.Or:
			acc = acc || next
		default: // wf.And and the zero value both mean AND
			acc = acc && next
		}
	}
	return acc
}

func evalOne(c wf.Condition, root Root) bool {
	field := Lookup(root, c.Field)

	switch c.Operator {
	case wf.Exists:
		return !isUndefined(field) && field != nil
	case wf.NotExists:
		return isUndefined(field) || field == nil
	case wf.Equals:
		if isUndefined(field) {
			return false
		}
		return deepEqual(field, c.Value)
	case wf.NotEquals:
		if isUndefined(field) {
			return true
		}
		return !deepEqual(field, c.Value)
	case wf.Contains:
		if isUndefined(field) {
			return false
		}
		return containsStr(field, c.Value)
	case wf.NotContains:
		if isUndefined(field) {
			return true
		}
		return !containsStr(field, c.Value)
	case wf.GreaterThan:
		if isUndefined(field) {
			return false
		}
		a, aok := asFloat(field)
		b, bok := asFloat(c.Value)
		return aok && bok && a > b
	case wf.LessThan:
		if isUndefined(field) {
			return false
		}
		a, aok := asFloat(field)
		b, bok := asFloat(c.Value)
		return aok && bok && a < b
	case wf.In:
		if isUndefined(field) {
			return false
		}
		return memberOf(field, c.Value)
	case wf.NotIn:
		if isUndefined(field) {
			return true
		}
		return !memberOf(field, c.Value)
	default:
		return false
	}
}

func deepEqual(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func containsStr(field, value any) bool {
	return fmt.Sprint(field) != "" && strings.Contains(fmt.Sprint(field), fmt.Sprint(value))
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func memberOf(field, list any) bool {
	arr, ok := list.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		if deepEqual(field, item) {
			return true
		}
	}
	return false
}
