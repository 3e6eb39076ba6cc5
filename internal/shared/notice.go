package shared

// Notice kinds.
const (
	NoticeError   = "error"
	NoticeInfo    = "info"
	NoticeSuccess = "success"
)

// Notice is a one-off banner rendered at the top of a page.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Notice returns the error banner for a failed load, or nil.
func (r Result[T]) Notice() *Notice {
	if r.Status != StatusError {
		return nil
	}
	return &Notice{Kind: NoticeError, Message: r.Message()}
}
