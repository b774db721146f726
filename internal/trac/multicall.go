package trac

import (
	"context"
	"fmt"

	"github.com/kolo/xmlrpc"
)

type methodCall struct {
	Method string
	Params []any
}

// callResult is either a value or the fault the server reported for that call
type callResult struct {
	Value any
	Err   error
}

// multicall sends calls in one system.multicall request.
// Each successful result arrives wrapped in a one-element array; failures are fault structs.
func (c *Client) multicall(ctx context.Context, calls []methodCall) ([]callResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := make([]any, len(calls))
	for i, call := range calls {
		params[i] = map[string]any{
			"methodName": call.Method,
			"params":     call.Params,
		}
	}

	var reply []any
	if err := c.rpc.Call("system.multicall", []any{params}, &reply); err != nil {
		return nil, err
	}
	if len(reply) != len(calls) {
		return nil, fmt.Errorf("system.multicall returned %d results for %d calls", len(reply), len(calls))
	}

	results := make([]callResult, len(reply))
	for i, raw := range reply {
		results[i] = decodeCallResult(raw)
	}
	return results, nil
}

func decodeCallResult(raw any) callResult {
	switch v := raw.(type) {
	case []any:
		if len(v) != 1 {
			return callResult{Err: fmt.Errorf("unexpected multicall result with %d values", len(v))}
		}
		return callResult{Value: v[0]}
	case map[string]any:
		code, _ := toInt(v["faultCode"])
		return callResult{Err: xmlrpc.FaultError{Code: code, String: toString(v["faultString"])}}
	default:
		return callResult{Err: fmt.Errorf("unexpected multicall result %T", raw)}
	}
}
