package storage

import (
	"github.com/sahilm/fuzzy"

	"deskmate/model"
)

// MessageMatch is a single history search hit
type MessageMatch struct {
	ID        string
	Role      model.Role
	Content   string
	Preview   string
	Timestamp string
	Score     int
}

// Search runs a fuzzy search over all stored message contents and returns
// matches ranked best first. An empty query matches nothing.
func (ms *MessageStorage) Search(query string) ([]MessageMatch, error) {
	if query == "" {
		return []MessageMatch{}, nil
	}

	messages, err := ms.Recent(0)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(messages))
	for i, msg := range messages {
		contents[i] = msg.Content
	}

	results := fuzzy.Find(query, contents)

	matches := make([]MessageMatch, 0, len(results))
	for _, r := range results {
		msg := messages[r.Index]

		preview := msg.Content
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}

		matches = append(matches, MessageMatch{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			Preview:   preview,
			Timestamp: msg.Timestamp,
			Score:     r.Score,
		})
	}

	return matches, nil
}
