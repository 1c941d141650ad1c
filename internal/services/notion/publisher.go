package notion

import (
	"context"
	"log/slog"
	"time"

	"github.com/jomei/notionapi"

	"scribe/internal/logging"
	"scribe/internal/services"
	"scribe/internal/summary"
)

// maxBlocksPerAppend is Notion's hard limit on children per append call.
const maxBlocksPerAppend = 100

// Config captures the Notion settings the publisher needs.
type Config struct {
	Token      string
	DatabaseID string
}

// pageCreator and blockAppender are the two API slices the publisher uses,
// split out so tests can stand in for the real client.
type pageCreator interface {
	Create(ctx context.Context, request *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

type blockAppender interface {
	AppendChildren(ctx context.Context, id notionapi.BlockID, request *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error)
}

// Publisher renders summary records into a Notion database.
type Publisher struct {
	databaseID notionapi.DatabaseID
	pages      pageCreator
	blocks     blockAppender
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes the publisher.
type Option func(*Publisher)

// WithAPI overrides the page and block clients (tests).
func WithAPI(pages pageCreator, blocks blockAppender) Option {
	return func(p *Publisher) {
		if pages != nil {
			p.pages = pages
		}
		if blocks != nil {
			p.blocks = blocks
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPublisher creates a publisher for the configured database.
func NewPublisher(cfg Config, logger *slog.Logger, opts ...Option) *Publisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := notionapi.NewClient(notionapi.Token(cfg.Token))
	p := &Publisher{
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		pages:      client.Page,
		blocks:     client.Block,
		logger:     logging.NewComponentLogger(logger, "notion"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreatePage creates the summary page with its database properties, a
// creation callout linking back to the recording, and a table of contents.
// It returns the new page's ID for the follow-up content append.
func (p *Publisher) CreatePage(ctx context.Context, record *summary.Record) (string, error) {
	today := notionapi.Date(p.now())
	emoji := notionapi.Emoji("🤖")

	request := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: p.databaseID,
		},
		Icon: &notionapi.Icon{Type: "emoji", Emoji: &emoji},
		Properties: notionapi.Properties{
			"Title": notionapi.TitleProperty{
				Title: []notionapi.RichText{plainText(record.Title)},
			},
			"Type": notionapi.SelectProperty{
				Select: notionapi.Option{Name: record.Tag},
			},
			"Duration (Seconds)": notionapi.NumberProperty{
				Number: float64(record.DurationSeconds),
			},
			"Date": notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &today},
			},
			"Size": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{plainText(record.SizeLabel)},
			},
		},
		Children: []notionapi.Block{
			creationCallout(record.SourceURL, &today),
			notionapi.TableOfContentsBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeTableOfContents,
				},
				TableOfContents: notionapi.TableOfContents{Color: "default"},
			},
		},
	}

	page, err := p.pages.Create(ctx, request)
	if err != nil {
		return "", services.Wrap(services.ErrPublish, "notion", "create-page",
			"create summary page", err)
	}
	p.logger.Debug("created page", logging.String("page_id", string(page.ID)))
	return string(page.ID), nil
}

// AppendContent fills the page with the summary, the resegmented
// transcript, and the info sections, respecting the per-append block limit.
func (p *Publisher) AppendContent(ctx context.Context, pageID string, record *summary.Record, sentences []string) error {
	blocks := contentBlocks(record, sentences)
	for start := 0; start < len(blocks); start += maxBlocksPerAppend {
		end := start + maxBlocksPerAppend
		if end > len(blocks) {
			end = len(blocks)
		}
		_, err := p.blocks.AppendChildren(ctx, notionapi.BlockID(pageID), &notionapi.AppendBlockChildrenRequest{
			Children: blocks[start:end],
		})
		if err != nil {
			return services.Wrap(services.ErrPublish, "notion", "append-content",
				"append page content", err)
		}
	}
	p.logger.Debug("appended content",
		logging.String("page_id", pageID),
		logging.Int("blocks", len(blocks)))
	return nil
}
