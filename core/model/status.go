package model

// Status payloads published on the status topic.
var (
	StatusOff = []byte{'0'}
	StatusOn  = []byte{'1'}
)

// StatusPayload maps a pin value to the status message body. A fresh slice is
// returned so callers may hand it to asynchronous publishers.
func StatusPayload(on bool) []byte {
	if on {
		return append([]byte(nil), StatusOn...)
	}
	return append([]byte(nil), StatusOff...)
}
