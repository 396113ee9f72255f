package nerve

// DefaultKeywords returns a fresh copy of the stock keyword table. OVERMAN has
// no list and is never reinforced by keywords.
func DefaultKeywords() map[Trait][]string {
	return map[Trait][]string{
		Child: {"child", "00", "new", "begin", "play", "innocence"},
		Lion:  {"no", "break", "freedom", "rule", "will", "master"},
		Camel: {"must", "duty", "weight", "carry", "suffer", "learn"},
		Void:  {"zen", "empty", "nothing", "void", "silence", "gate"},
		Will:  {"power", "strength", "force", "grow", "command"},
	}
}
