// Package corpus loads conversation data from the blob store and serves
// immutable snapshots of it to retrieval and topic extraction.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// rawItem mirrors one Gladly export line. The content object carries both the
// item type and a loose bag of text fields that varies by type.
type rawItem struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customerId"`
	ConversationID string          `json:"conversationId"`
	Timestamp      string          `json:"timestamp"`
	Content        json.RawMessage `json:"content"`
}

type rawContent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Title   string `json:"title"`
	Answer  string `json:"answer"`
	Comment string `json:"comment"`
}

// ParseJSONL decodes a JSON Lines export into corpus items. Malformed lines
// are skipped and counted, never fatal; an export with a few bad lines still
// loads.
func ParseJSONL(data []byte, log zerolog.Logger) ([]model.CorpusItem, int) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var items []model.CorpusItem
	skipped := 0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		item, err := parseLine(line)
		if err != nil {
			skipped++
			log.Debug().Int("line", lineNo).Err(err).Msg("skipping malformed corpus line")
			continue
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		log.Warn().Err(err).Msg("corpus scan stopped early")
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("loaded", len(items)).Msg("corpus had malformed lines")
	}
	return items, skipped
}

func parseLine(line []byte) (model.CorpusItem, error) {
	var raw rawItem
	if err := json.Unmarshal(line, &raw); err != nil {
		return model.CorpusItem{}, fmt.Errorf("decode item: %w", err)
	}
	if raw.ID == "" {
		return model.CorpusItem{}, fmt.Errorf("item has no id")
	}

	var content rawContent
	if len(raw.Content) > 0 {
		if err := json.Unmarshal(raw.Content, &content); err != nil {
			return model.CorpusItem{}, fmt.Errorf("decode content: %w", err)
		}
	}

	item := model.CorpusItem{
		ID:         raw.ID,
		GroupID:    raw.ConversationID,
		CustomerID: raw.CustomerID,
		Timestamp:  raw.Timestamp,
		Type:       model.ParseContentType(content.Type),
		TextFields: textFields(content),
	}
	if item.GroupID == "" {
		item.GroupID = raw.ID
	}
	item.ComputeDerived()
	return item, nil
}

func textFields(c rawContent) []model.TextField {
	fields := []struct{ name, text string }{
		{"content", c.Content},
		{"subject", c.Subject},
		{"body", c.Body},
		{"title", c.Title},
		{"answer", c.Answer},
		{"comment", c.Comment},
	}
	var out []model.TextField
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		out = append(out, model.TextField{Name: f.name, Text: f.text})
	}
	return out
}
