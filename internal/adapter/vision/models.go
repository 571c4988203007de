package vision

// detectResponse is the wire format of the detection backend: one entry per
// detected object, possibly repeating labels across objects.
type detectResponse struct {
	Detections []detection `json:"detections"`
}

type detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// recognizeResponse is the wire format of the text-recognition backend.
type recognizeResponse struct {
	Lines []string `json:"lines"`
}
