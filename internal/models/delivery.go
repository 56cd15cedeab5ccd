package models

// Disposition values for rendered artifacts.
const (
	DispositionInline     = "inline"
	DispositionAttachment = "attachment"
)

// Artifact is a rendered invoice document plus response metadata.
type Artifact struct {
	Content     []byte
	ContentType string
	Disposition string
	Filename    string
}

// ShareLink is a ready-to-open messaging deep link.
type ShareLink struct {
	WhatsAppLink string `json:"whatsappLink"`
	Message      string `json:"message"`
	DownloadURL  string `json:"downloadUrl"`
}

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Name    string
	Content []byte
}

// Email is a message handed to the mail transport.
type Email struct {
	To         string
	Subject    string
	HTML       string
	SenderName string
	Attachment *Attachment
}
