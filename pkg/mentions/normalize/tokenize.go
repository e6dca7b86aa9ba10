package normalize

import "unicode"

// Split breaks text into words and punctuation marks.
//
// Letters and digits form words. A hyphen, apostrophe or dot stays inside a
// word when it sits between two word runes ("северсталь-авто", "x5.ru",
// "1.5"). Whitespace separates tokens and every other rune is a token of its
// own, so "(moex:" becomes "(", "moex", ":".
func Split(text string) []string {
	runes := []rune(text)
	var (
		tokens []string
		start  = -1
	)

	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, string(runes[start:end]))
			start = -1
		}
	}

	for i, r := range runes {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case isJoiner(r) && start >= 0 && i+1 < len(runes) && isWordRune(runes[i+1]):
			// inner joiner, keep the word going
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			if unicode.IsPrint(r) {
				tokens = append(tokens, string(r))
			}
		}
	}
	flush(len(runes))

	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Mn, r)
}

func isJoiner(r rune) bool {
	switch r {
	case '-', '\'', '’', '.':
		return true
	}
	return false
}
