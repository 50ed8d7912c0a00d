// Package docs ships the built-in help topics shown by `coursetree docs`.
package docs

import (
	"embed"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topics returns the available topic names, sorted.
func Topics() []string {
	entries, err := contentFS.ReadDir("content")
	if err != nil {
		return nil
	}
	topics := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if ok && name != "" {
			topics = append(topics, name)
		}
	}
	sort.Strings(topics)
	return topics
}

// Get returns the markdown body for a topic.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return "", false
	}
	b, err := contentFS.ReadFile("content/" + topic + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}
