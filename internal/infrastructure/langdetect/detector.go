package langdetect

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

var errUndetectable = errors.New("language could not be detected")

// candidates narrows trigram scoring when an unrestricted guess is not
// reliable, which keeps short Portuguese text stable.
var candidates = whatlanggo.Options{
	Whitelist: map[whatlanggo.Lang]bool{
		whatlanggo.Por: true,
		whatlanggo.Eng: true,
		whatlanggo.Spa: true,
		whatlanggo.Fra: true,
		whatlanggo.Ita: true,
		whatlanggo.Deu: true,
	},
}

// DetectFunc returns an ISO 639-1 code for text.
type DetectFunc func(text string) (string, error)

// Detector wraps a deterministic trigram detector and never fails.
type Detector struct {
	detect DetectFunc
}

func New() *Detector {
	return &Detector{detect: detectTrigram}
}

func NewWithFunc(fn DetectFunc) *Detector {
	if fn == nil {
		fn = detectTrigram
	}
	return &Detector{detect: fn}
}

// Detect returns the language tag of text. Portuguese is reported as "pt-BR";
// blank input and detector failures yield domain.LanguageUnknown.
func (d *Detector) Detect(text string) (lang string) {
	if strings.TrimSpace(text) == "" {
		return domain.LanguageUnknown
	}
	defer func() {
		if r := recover(); r != nil {
			lang = domain.LanguageUnknown
		}
	}()

	code, err := d.detect(text)
	if err != nil || code == "" {
		return domain.LanguageUnknown
	}
	if code == "pt" {
		return "pt-BR"
	}
	return code
}

func detectTrigram(text string) (string, error) {
	info := whatlanggo.Detect(text)
	if info.Lang < 0 || !info.IsReliable() {
		info = whatlanggo.DetectWithOptions(text, candidates)
	}
	if info.Lang < 0 {
		return "", errUndetectable
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", errUndetectable
	}
	return code, nil
}
