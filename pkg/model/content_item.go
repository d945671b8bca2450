package model

// ContentKind discriminates the concrete type held by a ContentItem.
type ContentKind string

const (
	ContentInputText  ContentKind = "input_text"
	ContentOutputText ContentKind = "output_text"
	ContentInputImage ContentKind = "input_image"
)

// ContentItem is one piece of a Message's content sequence. Exactly one
// of the payload fields is populated, selected by Kind.
//
// ContentItem is a plain struct rather than an interface so that it
// round-trips through encoding/json without a custom UnmarshalJSON:
// the Kind field decides which accessor is meaningful, mirroring the
// payload-pointer convention used by the teacher's AgentEvent type.
type ContentItem struct {
	Kind ContentKind `json:"type"`

	// Text holds the payload for InputText and OutputText.
	Text string `json:"text,omitempty"`

	// Data holds base64-encoded image bytes for InputImage.
	Data string `json:"data,omitempty"`
	// MimeType describes Data's encoding for InputImage.
	MimeType string `json:"mime_type,omitempty"`
}

// InputText builds an InputText content item.
func InputText(text string) ContentItem {
	return ContentItem{Kind: ContentInputText, Text: text}
}

// OutputText builds an OutputText content item.
func OutputText(text string) ContentItem {
	return ContentItem{Kind: ContentOutputText, Text: text}
}

// InputImage builds an InputImage content item.
func InputImage(data, mime string) ContentItem {
	return ContentItem{Kind: ContentInputImage, Data: data, MimeType: mime}
}
