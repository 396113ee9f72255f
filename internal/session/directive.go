package session

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/nietz/internal/nerve"
)

// DirectivePrefix marks input that is routed to the directive interpreter.
const DirectivePrefix = "<"

var exitWords = map[string]bool{
	"exit": true, "quit": true,
	DirectivePrefix + "exit": true, DirectivePrefix + "quit": true,
}

// IsExit reports whether input ends the session.
func IsExit(input string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(input))]
}

func (s *Session) directive(input string) Response {
	name := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(input), DirectivePrefix, ""))
	switch name {
	case "map":
		return Response{Kind: KindDirective, Text: NerveMap(s.nerves)}
	case "clear":
		return Response{Kind: KindDirective, Text: ClearedText, Clear: true}
	case "history":
		return Response{Kind: KindDirective, Text: strings.Join(s.recent(s.cfg.History.Show), "\n")}
	}
	return Response{Kind: KindDirective, Text: fmt.Sprintf("[SYSTEM]: Command %s%s recognized.", DirectivePrefix, name)}
}

func (s *Session) recent(n int) []string {
	if n <= 0 || n >= len(s.history) {
		return s.History()
	}
	return append([]string(nil), s.history[len(s.history)-n:]...)
}

// NerveMap renders one bar per trait, two blocks per unit of weight.
func NerveMap(n *nerve.State) string {
	var b strings.Builder
	b.WriteString("\n[ NERVE MAP ]\n")
	for _, t := range nerve.Traits() {
		w := n.Get(t)
		bars := int(w * 2)
		if bars < 0 {
			bars = 0
		}
		fmt.Fprintf(&b, "%8s: %s (%.2f)\n", t, strings.Repeat("█", bars), w)
	}
	return b.String()
}
