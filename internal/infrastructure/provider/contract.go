package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kirillkom/mail-triage/internal/core/domain"
)

// replySchema accepts the English field names and the Portuguese ones some
// models fall back to.
const replySchema = `{
  "type": "object",
  "anyOf": [
    {"required": ["category", "reply"]},
    {"required": ["categoria", "resposta"]}
  ],
  "properties": {
    "category":  {"type": "string"},
    "reply":     {"type": "string"},
    "categoria": {"type": "string"},
    "resposta":  {"type": "string"}
  }
}`

var replyContract = mustCompileSchema("reply.json", replySchema)

func mustCompileSchema(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}

// ReplyPayload is the JSON object every reply-drafting backend must return.
type ReplyPayload struct {
	Category string `json:"category"`
	Reply    string `json:"reply"`

	Categoria string `json:"categoria"`
	Resposta  string `json:"resposta"`
}

func (p ReplyPayload) label() string {
	if strings.TrimSpace(p.Category) != "" {
		return p.Category
	}
	return p.Categoria
}

func (p ReplyPayload) text() string {
	if strings.TrimSpace(p.Reply) != "" {
		return strings.TrimSpace(p.Reply)
	}
	return strings.TrimSpace(p.Resposta)
}

// ParseReply decodes a completion into a ReplyPayload. Markdown code fences and
// prose around the JSON object are tolerated; anything that does not satisfy
// the contract is a malformed output.
func ParseReply(raw string) (ReplyPayload, error) {
	body := extractJSONObject(stripCodeFence(raw))
	if body == "" {
		return ReplyPayload{}, domain.WrapError(domain.ErrMalformedOutput, "parse reply", errors.New("no json object in completion"))
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return ReplyPayload{}, domain.WrapError(domain.ErrMalformedOutput, "parse reply", err)
	}
	if err := replyContract.Validate(doc); err != nil {
		return ReplyPayload{}, domain.WrapError(domain.ErrMalformedOutput, "validate reply", err)
	}

	var payload ReplyPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ReplyPayload{}, domain.WrapError(domain.ErrMalformedOutput, "decode reply", err)
	}
	return payload, nil
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}
