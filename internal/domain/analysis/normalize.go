package analysis

import (
	"encoding/json"
	"strings"
)

// payload is the untrusted shape of the model's embedded JSON. Every field is
// optional; nothing here is trusted until it has been coerced into Result.
type payload struct {
	Category          string         `json:"category"`
	Summary           string         `json:"summary"`
	Themes            []string       `json:"themes"`
	Entities          []looseEntity  `json:"entities"`
	SocialHandles     []looseHandle  `json:"socialHandles"`
	ReadingLevel      string         `json:"readingLevel"`
	EstimatedReadTime string         `json:"estimatedReadTime"`
	KeyPhrases        []string       `json:"keyPhrases"`
	Citations         []Citation     `json:"citations"`
	TableOfContents   []string       `json:"tableOfContents"`
}

// looseEntity tolerates both {"type":..,"name":..} objects and bare strings
// (older model outputs emitted entities as plain names).
type looseEntity struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (e *looseEntity) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		e.Name = s
		return nil
	}
	type alias looseEntity
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*e = looseEntity(a)
	return nil
}

type looseHandle struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	URL      string `json:"url"`
}

// Normalize parses the model's free-form output into a fully-populated,
// enum-safe Result. The candidate JSON is the span from the first "{" to the
// last "}" (greedy, prose-tolerant). When no candidate exists or parsing
// fails, the fully-defaulted Result is returned together with
// ErrMalformedOutput; the Result is always usable.
func Normalize(raw string) (*Result, error) {
	out := DefaultResult()

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return out, ErrMalformedOutput
	}

	var p payload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return out, ErrMalformedOutput
	}

	if strings.TrimSpace(p.Category) != "" {
		out.Category = p.Category
	}
	if strings.TrimSpace(p.Summary) != "" {
		out.Summary = p.Summary
	}
	if p.Themes != nil {
		out.Themes = p.Themes
	}
	if p.KeyPhrases != nil {
		out.KeyPhrases = p.KeyPhrases
	}
	if p.Citations != nil {
		out.Citations = p.Citations
	}
	if p.TableOfContents != nil {
		out.TableOfContents = p.TableOfContents
	}
	out.ReadingLevel = p.ReadingLevel
	out.EstimatedReadTime = p.EstimatedReadTime

	for _, e := range p.Entities {
		name := e.Name
		if strings.TrimSpace(name) == "" {
			name = "Unknown"
		}
		out.Entities = append(out.Entities, Entity{
			Type: coerceEntityType(e.Type),
			Name: name,
		})
	}

	for _, h := range p.SocialHandles {
		out.SocialHandles = append(out.SocialHandles, SocialHandle{
			Platform: coercePlatform(h.Platform),
			Handle:   h.Handle,
			URL:      h.URL,
		})
	}

	return out, nil
}

func coerceEntityType(s string) EntityType {
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range EntityTypes() {
		if t == v {
			return v
		}
	}
	return EntityOther
}

func coercePlatform(s string) Platform {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Platforms() {
		if p == v {
			return v
		}
	}
	return PlatformOther
}
