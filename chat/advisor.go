package chat

import "context"

// AdvisedRequest is the request as it travels through the advisor chain.
// Advisors may rewrite any field before handing it to the next link.
type AdvisedRequest struct {
	SystemText string
	History    []Message
	UserText   string
	Options    Options
	Params     map[string]any
}

// Prompt assembles the final prompt: system text, history, then the user turn.
func (r *AdvisedRequest) Prompt() Prompt {
	messages := make([]Message, 0, len(r.History)+2)
	if r.SystemText != "" {
		messages = append(messages, SystemMessage(r.SystemText))
	}
	messages = append(messages, r.History...)
	messages = append(messages, UserMessage(r.UserText))
	return Prompt{Messages: messages, Options: r.Options.Clone()}
}

// Param returns an advisor parameter.
func (r *AdvisedRequest) Param(key string) (any, bool) {
	v, ok := r.Params[key]
	return v, ok
}

// CallFunc is one link of the advisor chain.
type CallFunc func(ctx context.Context, req *AdvisedRequest) (*Response, error)

// Advisor wraps a chat call.
type Advisor interface {
	Name() string
	AroundCall(ctx context.Context, req *AdvisedRequest, next CallFunc) (*Response, error)
}

// MemoryAdvisor is implemented by advisors that keep conversation memory.
type MemoryAdvisor interface {
	Advisor
	Memory() Memory
}

// chainAdvisors builds a CallFunc that runs advisors in order around final.
func chainAdvisors(advisors []Advisor, final CallFunc) CallFunc {
	next := final
	for i := len(advisors) - 1; i >= 0; i-- {
		advisor := advisors[i]
		inner := next
		next = func(ctx context.Context, req *AdvisedRequest) (*Response, error) {
			return advisor.AroundCall(ctx, req, inner)
		}
	}
	return next
}
