package selftest

import "strings"

// naturalLanguageParagraph is public-domain-style prose (not drawn from any
// copyrighted source) used as stand-in natural-language test material; it is
// repeated and truncated to the 100,000-byte scenario length spec.md §8
// calls for. Its content doesn't matter for the property under test (that
// compression strictly shrinks natural text, and that favor-speed strictly
// reduces command count versus favor-ratio) — only that it has natural
// language's redundancy structure, unlike the synthetic binary scenarios.
const naturalLanguageParagraph = `The quick brown fox jumps over the lazy dog near the old stone bridge
every morning before the sun has fully cleared the eastern ridge. Villagers
say the fox has done this for as long as anyone can remember, though no one
has ever managed to catch more than a glimpse of its tail vanishing into
the hedgerow. The dog, for its part, seems entirely unbothered, lifting one
ear and settling back to sleep in the warm patch of gravel by the mill
wheel. Travelers passing through often stop to ask about the bridge, which
was built two centuries ago from stone quarried a day's journey to the
north, and about the mill, which still turns on days when the river runs
high enough. Children from the village gather at dusk to watch the water
catch the last orange light, and the older residents tell stories about
the winter the river froze solid enough to walk across, something that has
not happened again in living memory. Every spring the fields beyond the
bridge fill with wildflowers, and every autumn the same fields are given
over to wheat, a cycle that has repeated itself so many times that the
soil itself seems to expect it.
`

// NaturalLanguageCorpus returns the first n bytes of a repeated
// natural-language text fragment.
func NaturalLanguageCorpus(n int) []byte {
	var b strings.Builder
	b.Grow(n + len(naturalLanguageParagraph))
	for b.Len() < n {
		b.WriteString(naturalLanguageParagraph)
	}
	return []byte(b.String()[:n])
}
