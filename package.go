// Package k8sagent turns a free-text request into a styled HTML response using an external
// text-generation capability that may be imperfect, slow, or transiently unavailable.
//
// The heart of the module is an evaluator/optimizer loop: a generator drafts a response, an
// evaluator grades it, and the grader's feedback is folded into the next prompt. The loop is
// bounded, every capability call is retried with exponential backoff, and the final response is
// normalized so it always satisfies the HTML output contract, whatever the model produced.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/xj90713/k8sagent"
//	    "github.com/xj90713/k8sagent/agents/evalopt"
//	    "github.com/xj90713/k8sagent/executor"
//	    "github.com/xj90713/k8sagent/hooks"
//	    "github.com/xj90713/k8sagent/models"
//	    "github.com/xj90713/k8sagent/observability"
//	)
//
//	func main() {
//	    // 1. Wrap a LangChainGo model
//	    model := models.NewLCGWrapper(llm).WithModelName("gpt-4o")
//
//	    // 2. Build the capabilities
//	    gen := models.NewGenerator(model)
//	    eval := models.NewEvaluator(model)
//
//	    // 3. Register observability sinks
//	    registry := hooks.NewRegistry()
//	    registry.Register(observability.NewLogHook(logger))
//
//	    // 4. Build the loop and the entry point
//	    agent := evalopt.NewAgent(gen, eval).
//	        WithLimits(k8sagent.DefaultLimits()).
//	        WithHooks(registry)
//	    exec := executor.New(agent).WithHooks(registry)
//
//	    // 5. Invoke. The result is always valid HTML.
//	    fmt.Println(exec.Invoke(context.Background(), "List the pods in kube-system"))
//	}
//
// # Capabilities
//
// [Generator] and [Evaluator] are the two external collaborators. The models package adapts any
// LangChainGo llms.Model to both. Generation may call [Action] values (tool callbacks); the
// generator runs the tool-call rounds and hands back the final text.
//
// # Limits
//
// [Limits] holds the iteration ceiling, the per-call attempt ceiling and the base backoff delay.
// They are passed explicitly to the loop at construction; there is no global state.
//
// # Hooks
//
// Nothing in the core writes to a console. Failures, retries, iterations and capability calls
// are published as events through hooks.Registry. The observability package provides zap
// logging, Prometheus metrics and OpenTelemetry span events as hooks.
//
// See hooks.go for hook interfaces and events.go for event types.
package k8sagent
