// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

// FieldLogger adds a fixed set of fields to every record.  Fields given to
// Log take precedence.
type FieldLogger struct {
	logger Logger
	fields map[string]interface{}
}

func (f *FieldLogger) Log(msg string, fields map[string]interface{}) error {
	merged := make(map[string]interface{}, len(f.fields)+len(fields))
	for k, v := range f.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return f.logger.Log(msg, merged)
}

func WithFields(logger Logger, fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{
		logger: logger,
		fields: fields,
	}
}
