// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	applog "earshot/internal/log"
)

// LoggingTransport implements the Transport interface by logging data at debug level.
type LoggingTransport struct {
	log applog.Logger
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	l := applog.For("transport")
	l.Debugf("using LoggingTransport")
	return &LoggingTransport{log: l}
}

// Send logs the JSON form of data. Logging transport never fails to "send".
func (lt *LoggingTransport) Send(data any) error {
	if applog.GetLevel() > applog.LevelDebug {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		lt.log.Debugf("received (%T): %+v (JSON marshal error: %v)", data, data, err)
		return nil
	}
	lt.log.Debugf("received (%T): %s", data, jsonData)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
