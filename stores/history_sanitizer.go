package stores

import "strings"

// SanitizeHistory makes stored history safe to replay into a prompt:
//   - empty messages and unknown roles are dropped
//   - the history starts at the first user message, so a window cut in the
//     middle of an exchange never opens with an orphaned assistant answer
//   - system messages are dropped; the system prompt is supplied per request
func SanitizeHistory(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	started := false
	for _, msg := range msgs {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case "user":
			started = true
		case "assistant":
			if !started {
				continue
			}
		default:
			continue
		}
		out = append(out, msg)
	}
	return out
}
