package summary

// Placeholder is substituted for any list field the model left absent or
// empty, so downstream rendering never has to special-case missing lists.
const Placeholder = "Nothing found for this list."

// Record is the validated summary of a single recording. The model produces
// the content fields; the enrichment fields are attached afterwards from the
// recording's own metadata.
type Record struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	MainPoints    []string `json:"main_points"`
	ActionItems   []string `json:"action_items"`
	FollowUp      []string `json:"follow_up"`
	Stories       []string `json:"stories"`
	References    []string `json:"references"`
	Arguments     []string `json:"arguments"`
	RelatedTopics []string `json:"related_topics"`
	Sentiment     string   `json:"sentiment"`

	SourceURL       string `json:"source_url,omitempty"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	SizeLabel       string `json:"size_label,omitempty"`
	Tag             string `json:"tag,omitempty"`
}

// listFields enumerates the Record list fields in rendering order.
func (r *Record) listFields() []*[]string {
	return []*[]string{
		&r.MainPoints,
		&r.ActionItems,
		&r.FollowUp,
		&r.Stories,
		&r.References,
		&r.Arguments,
		&r.RelatedTopics,
	}
}

// HasContent reports whether a list holds anything beyond the placeholder.
func HasContent(list []string) bool {
	for _, item := range list {
		if item != "" && item != Placeholder {
			return true
		}
	}
	return false
}
