// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package log

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// SimpleLogger writes each record as a single line of JSON.
type SimpleLogger struct {
	mutex  *sync.Mutex
	writer io.Writer
}

func (s *SimpleLogger) Log(msg string, fields map[string]interface{}) error {
	record := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		record[k] = v
	}
	record["msg"] = msg
	record["ts"] = time.Now().Format(time.RFC3339Nano)
	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error marshaling log record: %w", err)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, err = s.writer.Write(append(b, '\n'))
	if err != nil {
		return fmt.Errorf("error writing log record: %w", err)
	}
	return nil
}

func NewSimpleLogger(w io.Writer) *SimpleLogger {
	return &SimpleLogger{
		mutex:  &sync.Mutex{},
		writer: w,
	}
}
