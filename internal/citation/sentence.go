package citation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Abbreviations that end with a period without ending a sentence.
// Mostly journal and proceedings abbreviations seen in venue strings.
var abbreviations = map[string]bool{
	"al": true, "vol": true, "no": true, "pp": true, "p": true, "ed": true,
	"eds": true, "proc": true, "conf": true, "int": true, "intl": true,
	"natl": true, "nat": true, "acad": true, "sci": true, "trans": true,
	"rev": true, "lett": true, "res": true, "eng": true, "comput": true,
	"phys": true, "chem": true, "biol": true, "med": true, "soc": true,
	"assoc": true, "ann": true, "univ": true, "dept": true, "symp": true,
	"j": true, "st": true, "vs": true, "appl": true, "math": true,
}

// splitSentences splits s at ". " boundaries. A period after a known
// abbreviation never ends a sentence. A period after a single initial ends a
// sentence only when initialsEnd is set (surname-first author lists such as
// "Smith, J., Doe, A. Title") and the next word is not itself an initial.
func splitSentences(s string, initialsEnd bool) []string {
	var sentences []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '.' || s[i+1] != ' ' {
			continue
		}
		word := lastWord(s[start:i])
		if idx := strings.LastIndexByte(word, '.'); idx >= 0 {
			word = word[idx+1:]
		}
		if isInitial(word) {
			if !initialsEnd || isInitial(strings.TrimSuffix(nextWord(s[i+2:]), ".")) {
				continue
			}
		} else if abbreviations[strings.ToLower(word)] {
			continue
		}
		sentences = append(sentences, strings.TrimSpace(s[start:i]))
		start = i + 2
	}
	sentences = append(sentences, strings.TrimSpace(s[start:]))
	return sentences
}

func nextWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(fields[0], ",;:")
}

// isInitial reports whether word is a single upper-case letter.
func isInitial(word string) bool {
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && size > 0 && unicode.IsUpper(r)
}
