// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Level is the severity of a log entry.
type Level string

const (
	Debug Level = "DEBUG"
	Info  Level = "INFO"
	Warn  Level = "WARN"
	Error Level = "ERROR"
)

// Logger writes structured JSON entries tagged with the engine component
// that produced them and the process identity (instance, container) they
// ran on, so a log aggregator can group lines from one workflow execution
// across every component it touched.
type Logger struct {
	Component  string
	InstanceID string
	Container  string
}

// Entry is one structured log line. OrganizationID and ExecutionID are the
// engine's own correlation fields: every Logger call that runs inside a
// workflow execution passes the execution context's OrganizationID and
// ExecutionID here so a log aggregator can group every line one execution
// produced across every component it touched.
type Entry struct {
	Timestamp      string                 `json:"timestamp"`
	Level          Level                  `json:"level"`
	Component      string                 `json:"component"`
	InstanceID     string                 `json:"instanceId"`
	Container      string                 `json:"container"`
	OrganizationID string                 `json:"organizationId,omitempty"`
	ExecutionID    string                 `json:"executionId,omitempty"`
	Message        string                 `json:"message"`
	Fields         map[string]interface{} `json:"fields,omitempty"`
}

// New builds a Logger for component, reading the deployment's instance id
// from INSTANCE_ID (falling back to "unknown") and the container name from
// the process hostname.
func New(component string) *Logger {
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
	}
}

func (l *Logger) log(level Level, organizationID, executionID, message string, fields map[string]interface{}) {
	entry := Entry{
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		Level:          level,
		Component:      l.Component,
		InstanceID:     l.InstanceID,
		Container:      l.Container,
		OrganizationID: organizationID,
		ExecutionID:    executionID,
		Message:        message,
		Fields:         fields,
	}

	line, err := json.Marshal(entry)
	if err != nil {
		log.Printf("logger: failed to marshal entry: %v", err)
		return
	}
	log.Println(string(line))
}

// Info logs an informational lifecycle event: a workflow started, a step
// completed, a flag evaluated.
func (l *Logger) Info(organizationID, executionID, message string, fields map[string]interface{}) {
	l.log(Info, organizationID, executionID, message, fields)
}

// Error logs a terminal failure: a workflow or step that could not recover.
func (l *Logger) Error(organizationID, executionID, message string, fields map[string]interface{}) {
	l.log(Error, organizationID, executionID, message, fields)
}

// Warn logs a best-effort failure the engine tolerates and continues past,
// such as a failed cache write or a workflow re-registration overwrite.
func (l *Logger) Warn(organizationID, executionID, message string, fields map[string]interface{}) {
	l.log(Warn, organizationID, executionID, message, fields)
}

// Debug logs low-level detail not needed outside active debugging.
func (l *Logger) Debug(organizationID, executionID, message string, fields map[string]interface{}) {
	l.log(Debug, organizationID, executionID, message, fields)
}
