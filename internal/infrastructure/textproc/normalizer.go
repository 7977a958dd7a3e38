package textproc

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/portuguese"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var trailingDigitsPattern = regexp.MustCompile(`\d+\b`)

// Stemmer reduces a single token to its stem.
type Stemmer func(token string) string

// PortugueseStem applies the Snowball Portuguese stemmer to a lowercased token.
func PortugueseStem(token string) string {
	env := snowballstem.NewEnv(strings.ToLower(token))
	portuguese.Stem(env)
	return env.Current()
}

// Preprocessor implements the cleaning and normalization stages.
type Preprocessor struct {
	stem Stemmer
}

func NewPreprocessor() *Preprocessor {
	return &Preprocessor{stem: PortugueseStem}
}

// NewPreprocessorWithStemmer is used by tests to observe stemming.
func NewPreprocessorWithStemmer(stem Stemmer) *Preprocessor {
	if stem == nil {
		stem = PortugueseStem
	}
	return &Preprocessor{stem: stem}
}

func (p *Preprocessor) Clean(text string) string {
	return Clean(text)
}

// Normalize cleans text and then strips punctuation, digit runs and Portuguese
// stopwords, optionally stemming what is left.
func (p *Preprocessor) Normalize(text string, stemming bool) string {
	return p.normalizeCleaned(Clean(text), stemming)
}

// Preprocess runs a single cleaning pass and derives both outputs from it.
func (p *Preprocessor) Preprocess(text string, stemming bool) (string, string) {
	cleaned := Clean(text)
	return cleaned, p.normalizeCleaned(cleaned, stemming)
}

func (p *Preprocessor) normalizeCleaned(cleaned string, stemming bool) string {
	stripped := stripPunctuation(cleaned)
	stripped = trailingDigitsPattern.ReplaceAllString(stripped, " ")

	fields := strings.Fields(stripped)
	tokens := make([]string, 0, len(fields))
	for _, token := range fields {
		if isDigits(token) || IsStopword(token) {
			continue
		}
		if stemming {
			token = p.stem(token)
			if token == "" {
				continue
			}
		}
		tokens = append(tokens, token)
	}
	return strings.Join(tokens, " ")
}

func stripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) || unicode.IsPunct(r) {
			return -1
		}
		return r
	}, text)
}

func isDigits(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return token != ""
}
