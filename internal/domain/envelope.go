package domain

// Row is one backend result row, keyed by column name. Rows pass through
// the dispatcher unchanged; no reshaping happens beyond the envelope.
type Row map[string]any

// Envelope is the uniform success response shape for dispatch endpoints.
// ReturnData echoes the action that produced the rows so clients can
// correlate responses.
type Envelope struct {
	Rows       []Row  `json:"rows"`
	ReturnData string `json:"return_data"`
}
