package match

var notFoundMessages = []string{
	"Nope, they never said that!",
	"This phrase doesn't exist in the universe of this transcript.",
	"Not even with creative editing could we make them say that!",
	"Your search has gone beyond the boundaries of reality.",
	"Even frankenbiting can't make this happen.",
	"The perfect quote exists only in your imagination.",
	"We've searched high and low, but this one's not in the transcript.",
	"Maybe they said it off camera?",
	"The transcript says no, but your determination says yes!",
	"That's a great quote, but it's not in the transcript.",
	"Nice try! Finding alternative phrases instead...",
	"We've scoured every word, but couldn't assemble this phrase.",
	"Your subject wasn't quite so eloquent, try something simpler?",
}

// Intner is satisfied by *rand.Rand from math/rand/v2.
type Intner interface {
	IntN(n int) int
}

// NotFoundMessage picks a message for an empty result set. A nil source
// always yields the first message.
func NotFoundMessage(r Intner) string {
	if r == nil {
		return notFoundMessages[0]
	}
	i := r.IntN(len(notFoundMessages))
	if i < 0 || i >= len(notFoundMessages) {
		i = 0
	}
	return notFoundMessages[i]
}
