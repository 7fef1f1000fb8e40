// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

// Package log provides the structured logger used by the bash facade and the
// bashfs command.  A Logger writes a message with a map of fields.
package log

type Logger interface {
	Log(msg string, fields map[string]interface{}) error
}

// NopLogger drops every record.
type NopLogger struct{}

func (NopLogger) Log(msg string, fields map[string]interface{}) error {
	return nil
}
