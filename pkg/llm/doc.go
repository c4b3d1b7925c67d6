// Package llm provides the model client handed to agents.
//
// A Client is bound to one model name. New resolves the provider from the
// model name, builds one provider per matching credential profile, and wraps
// them with retry and profile failover:
//
//	client, err := llm.New(llm.Options{Model: "claude-sonnet-4-20250514", Profiles: profiles})
//	resp, err := client.Call(ctx, llm.Request{Messages: []llm.Message{llm.UserMessage("hi")}})
package llm
