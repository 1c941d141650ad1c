package notion

import (
	"strings"

	"github.com/jomei/notionapi"

	"scribe/internal/summary"
)

// transcriptSentencesPerParagraph groups the resegmented transcript so the
// page reads as prose instead of one sentence per line.
const transcriptSentencesPerParagraph = 4

const argumentsWarning = "These are potential arguments and rebuttals that " +
	"other people may bring up in response to the covered topics. Like every " +
	"other part of this summary document, factual accuracy is not guaranteed."

func plainText(content string) notionapi.RichText {
	return notionapi.RichText{Text: &notionapi.Text{Content: content}}
}

// linkedText degrades to plain text when url is empty: Notion rejects rich
// text carrying an empty link URL.
func linkedText(content, url string) notionapi.RichText {
	if url == "" {
		return plainText(content)
	}
	return notionapi.RichText{Text: &notionapi.Text{Content: content, Link: &notionapi.Link{Url: url}}}
}

func creationCallout(sourceURL string, date *notionapi.Date) notionapi.Block {
	return notionapi.CalloutBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeCallout,
		},
		Callout: notionapi.Callout{
			RichText: []notionapi.RichText{
				plainText("This AI transcription/summary was created on "),
				{
					Type: "mention",
					Mention: &notionapi.Mention{
						Type: "date",
						Date: &notionapi.DateObject{Start: date},
					},
				},
				plainText(". "),
				linkedText("Listen to the original recording here.", sourceURL),
			},
			Color: "blue_background",
		},
	}
}

func heading1(text string) notionapi.Block {
	return notionapi.Heading1Block{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeHeading1,
		},
		Heading1: notionapi.Heading{RichText: []notionapi.RichText{plainText(text)}},
	}
}

func heading2(text string) notionapi.Block {
	return notionapi.Heading2Block{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeHeading2,
		},
		Heading2: notionapi.Heading{RichText: []notionapi.RichText{plainText(text)}},
	}
}

func paragraph(text string) notionapi.Block {
	return notionapi.ParagraphBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeParagraph,
		},
		Paragraph: notionapi.Paragraph{RichText: []notionapi.RichText{plainText(text)}},
	}
}

func bullet(text string) notionapi.Block {
	return notionapi.BulletedListItemBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeBulletedListItem,
		},
		BulletedListItem: notionapi.ListItem{RichText: []notionapi.RichText{plainText(text)}},
	}
}

func todo(text string) notionapi.Block {
	return notionapi.ToDoBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeToDo,
		},
		ToDo: notionapi.ToDo{RichText: []notionapi.RichText{plainText(text)}},
	}
}

func warningCallout(text string) notionapi.Block {
	emoji := notionapi.Emoji("⚠️")
	return notionapi.CalloutBlock{
		BasicBlock: notionapi.BasicBlock{
			Object: notionapi.ObjectTypeBlock,
			Type:   notionapi.BlockTypeCallout,
		},
		Callout: notionapi.Callout{
			RichText: []notionapi.RichText{plainText(text)},
			Icon:     &notionapi.Icon{Type: "emoji", Emoji: &emoji},
			Color:    "orange_background",
		},
	}
}

// contentBlocks renders the whole page body: summary, transcript paragraphs,
// then the info sections in fixed order.
func contentBlocks(record *summary.Record, sentences []string) []notionapi.Block {
	blocks := []notionapi.Block{
		heading1("Summary"),
		paragraph(record.Summary),
		heading1("Transcript"),
	}
	for start := 0; start < len(sentences); start += transcriptSentencesPerParagraph {
		end := start + transcriptSentencesPerParagraph
		if end > len(sentences) {
			end = len(sentences)
		}
		blocks = append(blocks, paragraph(strings.Join(sentences[start:end], " ")))
	}

	blocks = append(blocks, heading1("Info"))

	sections := []struct {
		header  string
		items   []string
		todo    bool
		warning string
	}{
		{header: "Main Points", items: record.MainPoints},
		{header: "Stories and Examples", items: record.Stories},
		{header: "References and Citations", items: record.References},
		{header: "Potential Action Items", items: record.ActionItems, todo: true},
		{header: "Follow-Up Questions", items: record.FollowUp},
		{header: "Arguments and Areas for Improvement", items: record.Arguments, warning: argumentsWarning},
		{header: "Related Topics", items: record.RelatedTopics},
	}
	for _, section := range sections {
		blocks = append(blocks, heading2(section.header))
		if section.warning != "" {
			blocks = append(blocks, warningCallout(section.warning))
		}
		for _, item := range section.items {
			if section.todo {
				blocks = append(blocks, todo(item))
			} else {
				blocks = append(blocks, bullet(item))
			}
		}
	}
	return blocks
}
