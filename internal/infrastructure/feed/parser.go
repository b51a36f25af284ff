package feed

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsradar/internal/domain"
	"newsradar/internal/ports"
)

const defaultCreator = "Unknown Author"

// Parser normalizes RSS and Atom documents into article stubs.
type Parser struct {
	parser *gofeed.Parser
}

var _ ports.FeedParser = (*Parser)(nil)

// NewParser builds a universal RSS/Atom parser.
func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// Parse returns one stub per item/entry in document order. A document
// with zero items yields an empty slice; unparseable XML is an error.
func (p *Parser) Parse(raw, sourceName string) ([]domain.ArticleStub, error) {
	parsed, err := p.parser.ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", sourceName, err)
	}

	stubs := make([]domain.ArticleStub, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		stubs = append(stubs, domain.ArticleStub{
			Title:   DecodeEntities(strings.TrimSpace(item.Title)),
			Link:    DecodeEntities(strings.TrimSpace(item.Link)),
			PubDate: DecodeEntities(strings.TrimSpace(item.Published)),
			Creator: itemCreator(item),
		})
	}

	return stubs, nil
}

func itemCreator(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return DecodeEntities(strings.TrimSpace(item.Author.Name))
	}

	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		if creator := strings.TrimSpace(item.DublinCoreExt.Creator[0]); creator != "" {
			return DecodeEntities(creator)
		}
	}

	return defaultCreator
}
