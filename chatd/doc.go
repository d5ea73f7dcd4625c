// Package chatd implements the conversation service behind the chatmark
// renderer: a JSON HTTP API that persists conversations, relays chat
// completions to an upstream LLM with model fallback, and serves rendered
// views of assistant replies.
//
// The package is wired together by cmd/chatmarkd but usable on its own:
//
//	store := chatd.NewMemoryStore()
//	llm := chatd.NewLLMClient(cfg.LLM, log.GetLogger("llm"))
//	srv := chatd.NewServer(cfg, store, llm, chatd.NewMemoryLimiter(60), log.GetLogger("http"))
//	err := srv.Run(ctx)
//
// Conversations live in Redis when a redis_url is configured and in memory
// otherwise; both stores satisfy the same Store interface.
package chatd
