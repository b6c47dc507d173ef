package segments

import (
	"sync"

	"github.com/invopop/jsonschema"
)

var schema = sync.OnceValue(func() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	s := reflector.Reflect(&Segment{})
	s.Title = "Segment"
	s.Description = "A speech recogniser segment delivered to the voice dispatcher"
	return s
})

// Schema returns the JSON schema of the segment wire format.
func Schema() *jsonschema.Schema {
	return schema()
}
