// Package actions provides k8sagent.Action implementations that live outside the process.
//
// A Remote action forwards the model's validated arguments to an HTTP endpoint as a JSON
// object and hands the response body back to the model. This is how cluster operations are
// reached: the agent itself holds no Kubernetes client.
//
//	pods := actions.NewRemote("list_pods", "http://tools.local/pods").
//	    WithDescription("List pods in a namespace").
//	    WithParameterSchema(map[string]any{
//	        "type":       "object",
//	        "properties": map[string]any{"namespace": map[string]any{"type": "string"}},
//	        "required":   []any{"namespace"},
//	    })
package actions
