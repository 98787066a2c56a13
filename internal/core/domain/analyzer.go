package domain

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Intent classifies what a user query is asking for.
type Intent int

const (
	// IntentOpen is an unrestricted semantic search.
	IntentOpen Intent = iota

	// IntentLegalCitation is a lookup of a specific law, decree or
	// resolution and optionally an article within it.
	IntentLegalCitation

	// IntentContextTopic is a lookup within a known informational topic.
	IntentContextTopic
)

// String returns the intent name for logging.
func (i Intent) String() string {
	switch i {
	case IntentLegalCitation:
		return "legal-citation"
	case IntentContextTopic:
		return "context-topic"
	default:
		return "open-search"
	}
}

// Classification is the analyzer's verdict on a query: the intent plus the
// parameters that were extracted for it.
type Classification struct {
	Intent Intent

	// Number is the normalised document number (legal citations only).
	Number string

	// Article is the article number (legal citations only).
	Article string

	// Topic is the matched topic tag (context topics only).
	Topic string
}

// Query-side citation patterns. Longer citation tokens come first so that
// "ley nro 7675" captures the number rather than failing on the bare "ley"
// alternative.
var (
	citationNumberPattern  = regexp.MustCompile(`(?i)(?:ley nro|decreto nro|ley n|ley|decreto|resolucion)\s*([\d.\-/]+)`)
	citationArticlePattern = regexp.MustCompile(`(?i)(?:artículo|articulo|art)\.?\s*(\d+)`)
)

// TopicRule maps a regular expression over the query text to a context
// topic tag. The rule set is configuration, not code: different deployments
// tune the vocabulary without touching the classifier.
type TopicRule struct {
	// Tag is the subtema value stored on context chunks ("Mision").
	Tag string

	// Pattern is a regular expression tested against the raw query.
	Pattern string
}

// DefaultTopicRules is the built-in topic vocabulary, used when the
// configuration supplies none. Order matters: the first matching rule wins.
func DefaultTopicRules() []TopicRule {
	return []TopicRule{
		{Tag: "Mision", Pattern: `(?i)misi[oó]n|visi[oó]n|valores`},
		{Tag: "Autoridades", Pattern: `(?i)autoridad|director|organigrama|cargos?\b`},
		{Tag: "Convenios", Pattern: `(?i)convenios?\b|acuerdos?\b|organismos?\b`},
		{Tag: "DGR", Pattern: `(?i)\bdgr\b|direcci[oó]n general de rentas|rentas\b|impuestos?\b|tribut|contribuyentes?\b|sellos?\b`},
	}
}

type compiledTopic struct {
	tag     string
	pattern *regexp.Regexp
}

// Analyzer classifies user queries into retrieval intents. Classification
// is a pure function of the query string: identical input always yields an
// identical classification for a given rule set. Rules can be swapped at
// runtime with SetRules.
type Analyzer struct {
	mu     sync.RWMutex
	topics []compiledTopic
}

// NewAnalyzer compiles the topic rules into an analyzer. An empty rule
// slice disables the context-topic tier entirely.
func NewAnalyzer(rules []TopicRule) (*Analyzer, error) {
	topics, err := compileTopics(rules)
	if err != nil {
		return nil, err
	}
	return &Analyzer{topics: topics}, nil
}

// SetRules replaces the topic vocabulary. On a compile error the previous
// rules stay in effect.
func (a *Analyzer) SetRules(rules []TopicRule) error {
	topics, err := compileTopics(rules)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.topics = topics
	a.mu.Unlock()
	return nil
}

func compileTopics(rules []TopicRule) ([]compiledTopic, error) {
	topics := make([]compiledTopic, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("topic rule %q: %w", r.Tag, err)
		}
		topics = append(topics, compiledTopic{tag: r.Tag, pattern: re})
	}
	return topics, nil
}

// Classify inspects the query and returns its retrieval intent, in strict
// priority order with no combination across tiers:
//
//  1. legal citation: a document number and/or an article number was
//     extracted; the number is normalised before use
//  2. context topic: the first matching topic rule wins
//  3. open search: no parameters
func (a *Analyzer) Classify(query string) Classification {
	var c Classification

	if m := citationNumberPattern.FindStringSubmatch(query); m != nil {
		c.Number = NormalizeNumber(m[1])
	}
	if m := citationArticlePattern.FindStringSubmatch(query); m != nil {
		c.Article = m[1]
	}
	if c.Number != "" || c.Article != "" {
		c.Intent = IntentLegalCitation
		return c
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, t := range a.topics {
		if t.pattern.MatchString(query) {
			c.Intent = IntentContextTopic
			c.Topic = t.tag
			return c
		}
	}

	c.Intent = IntentOpen
	return c
}

// SubtemaForFilename assigns a topic tag to a context document from its
// filename. Tags are checked in rule order and a later match overrides an
// earlier one, so the most specific naming convention wins.
func (a *Analyzer) SubtemaForFilename(filename string) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	lower := strings.ToLower(filename)
	subtema := ""
	for _, t := range a.topics {
		if strings.Contains(lower, strings.ToLower(t.tag)) {
			subtema = t.tag
		}
	}
	return subtema
}
