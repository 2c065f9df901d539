package suggestions

var starterFallback = []string{
	"What's your favorite movie in this genre?",
	"Any interesting facts to share?",
	"What's the best part about this topic?",
}

var replyFallback = []string{
	"Tell me more!",
	"That's interesting, why so?",
	"What happened after that?",
}

// Fallback возвращает статическую пачку для вида подсказки
func Fallback(kind Kind) []string {
	src := replyFallback
	if kind == KindStarter {
		src = starterFallback
	}

	out := make([]string, len(src))
	copy(out, src)
	return out
}
