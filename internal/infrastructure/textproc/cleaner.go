package textproc

import (
	"regexp"
	"strings"
)

// Rule is one text rewrite step of the cleaning pipeline.
type Rule struct {
	Name  string
	Apply func(string) string
}

func removeAll(pattern *regexp.Regexp) func(string) string {
	return func(text string) string {
		return pattern.ReplaceAllString(text, "")
	}
}

func replaceWithSpace(pattern *regexp.Regexp) func(string) string {
	return func(text string) string {
		return pattern.ReplaceAllString(text, " ")
	}
}

var (
	quotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^[ \t]*>+.*$`),
		regexp.MustCompile(`(?is)-----\s*(?:mensagem original|original message)\s*-----.*`),
		regexp.MustCompile(`(?ims)^[ \t]*(?:de|from):\s.*`),
	}
	signaturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:atenciosamente|cordialmente|best regards|kind regards),?.*$`),
		regexp.MustCompile(`(?im)(?:enviado do meu|sent from my) (?:iphone|android).*$`),
		regexp.MustCompile(`(?ims)^[ \t]*--[ \t]*$.*`),
	}
	urlPattern   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailPattern = regexp.MustCompile(`\S+@\S+`)
	emojiPattern = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{1F900}-\x{1F9FF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}\x{FE0F}]+`)
)

// cleaningRules is the cleaning contract. Order matters: quoted replies go
// before signatures, both before URL and e-mail removal, and whitespace is
// normalized last.
var cleaningRules = []Rule{
	{Name: "quoted-replies", Apply: func(text string) string {
		for _, pattern := range quotePatterns {
			text = pattern.ReplaceAllString(text, "")
		}
		return text
	}},
	{Name: "signatures", Apply: func(text string) string {
		for _, pattern := range signaturePatterns {
			text = pattern.ReplaceAllString(text, "")
		}
		return text
	}},
	{Name: "urls", Apply: replaceWithSpace(urlPattern)},
	{Name: "emails", Apply: replaceWithSpace(emailPattern)},
	{Name: "emojis", Apply: removeAll(emojiPattern)},
	{Name: "whitespace", Apply: collapseWhitespace},
}

// Rules returns a copy of the ordered cleaning pipeline.
func Rules() []Rule {
	out := make([]Rule, len(cleaningRules))
	copy(out, cleaningRules)
	return out
}

func collapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.Join(strings.Fields(text), " ")
}

const maxCleaningPasses = 8

// Clean strips quoted replies, signatures, URLs, e-mail addresses and emojis,
// then collapses whitespace. The pipeline is rerun until the text is stable so
// that Clean(Clean(x)) == Clean(x) even when one removal exposes another match.
func Clean(text string) string {
	for pass := 0; pass < maxCleaningPasses; pass++ {
		next := cleanOnce(text)
		if next == text {
			return next
		}
		text = next
	}
	return text
}

func cleanOnce(text string) string {
	for _, rule := range cleaningRules {
		text = rule.Apply(text)
	}
	return text
}
