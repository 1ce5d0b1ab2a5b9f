package model

// Video is an educational video suggested for a course or major
type Video struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// AskRequest is the body sent to the assistant endpoint
type AskRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// AskResponse is the assistant reply
type AskResponse struct {
	Response string `json:"response"`
}

// VideoRequest asks for videos about a major or course
type VideoRequest struct {
	Major string `json:"major" validate:"required,max=200"`
}
