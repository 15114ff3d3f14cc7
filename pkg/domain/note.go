package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is an immutable tagged text record kept by a MemoryStore.
// Plans and states reference notes by value; the store stays authoritative.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNote creates a note with a fresh UUID and a normalized tag set.
func NewNote(text string, tags []string) Note {
	return Note{
		ID:        uuid.NewString(),
		Text:      text,
		Tags:      NormalizeTags(tags),
		CreatedAt: time.Now().UTC(),
	}
}

// NormalizeTags turns a tag list into a sorted set. It never returns nil.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasTag reports whether the note carries the given tag.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SearchNotes ranks notes by naive keyword overlap with query.
//
// The query is split on whitespace and case-folded; a note scores one point per token
// found as a substring of its lower-cased text. Notes scoring zero are dropped. The sort
// is stable on score alone, so ties keep insertion order. At most topK notes are returned;
// topK <= 0 means DefaultTopK.
func SearchNotes(notes []Note, query string, topK int) []Note {
	if topK <= 0 {
		topK = DefaultTopK
	}
	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return []Note{}
	}

	type scored struct {
		score int
		note  Note
	}
	var hits []scored
	for _, n := range notes {
		text := strings.ToLower(n.Text)
		score := 0
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{score: score, note: n})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]Note, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.note)
	}
	return out
}
