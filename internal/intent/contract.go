package intent

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
)

const (
	ModeRun  = "run"
	ModeChat = "chat"
)

// Contract is the reply shape the reasoning service must produce.
type Contract struct {
	Mode    string `json:"mode" jsonschema:"enum=run,enum=chat,description=run executes command; chat speaks say"`
	Command string `json:"command" jsonschema:"description=Shell command for the user's OS. Empty unless mode is run"`
	Say     string `json:"say" jsonschema:"description=Reply to speak. Empty unless mode is chat"`
}

var (
	schemaOnce sync.Once
	schemaText string
)

// ContractSchema returns the JSON Schema of Contract, compact-encoded.
func ContractSchema() string {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
			Anonymous:                 true,
		}
		s := r.Reflect(&Contract{})
		s.Version = ""
		b, err := json.Marshal(s)
		if err != nil {
			// Contract is a fixed struct; marshalling cannot fail.
			panic(err)
		}
		schemaText = string(b)
	})
	return schemaText
}
