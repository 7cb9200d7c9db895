package components

// MessagePayload is the wire shape of a component-based message, ready for
// JSON serialization toward the messaging API.
type MessagePayload struct {
	Flags      int              `json:"flags"`
	Components []map[string]any `json:"components"`

	// Reply wiring, set by the dispatcher.
	MessageReference *MessageReference `json:"message_reference,omitempty"`
	AllowedMentions  *AllowedMentions  `json:"allowed_mentions,omitempty"`
}

type MessageReference struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
}

type AllowedMentions struct {
	RepliedUser bool `json:"replied_user"`
}

// BuildMessage validates the node tree and assembles the final payload with
// the components-v2 flags marker. The first violated constraint aborts the
// build with a *ValidationError.
func BuildMessage(nodes ...Node) (*MessagePayload, error) {
	if len(nodes) == 0 {
		return nil, validationErrorf("message requires at least one component")
	}

	rendered := make([]map[string]any, len(nodes))

	for i, node := range nodes {
		if err := node.validate(); err != nil {
			return nil, err
		}

		rendered[i] = node.render()
	}

	return &MessagePayload{
		Flags:      flagComponentsV2,
		Components: rendered,
	}, nil
}
