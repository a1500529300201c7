package llm

import "encoding/base64"

type LLMRequest struct {
	Prompt      string
	Images      []Image
	MaxTokens   int
	Temperature float64
}

type LLMResponse struct {
	Content    string
	StopReason string
}

// Image is an inline image attached to a request, sent ahead of the prompt text.
type Image struct {
	MediaType string
	Data      []byte
}

func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURL renders the image as a data: URL for APIs that only accept URLs.
func (i Image) DataURL() string {
	return "data:" + i.MediaType + ";base64," + i.Base64()
}
