package payloads

import "github.com/google/uuid"

// PictureTaskPayload is the message body for both enrichment queues: the job
// is fully identified by the picture to process. Side effects land in
// persistent storage only; no reply is sent.
type PictureTaskPayload struct {
	PictureID uuid.UUID `json:"picture_id"`
}
