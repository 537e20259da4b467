package fixtures

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

func fixturesSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile fixtures schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Fixtures"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Fixtures: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// CheckSchema validates a decoded YAML document (maps, slices and scalars as
// produced by yaml.v3 into an interface value) against the fixtures schema.
// Every schema violation becomes one ValidationError.
func CheckSchema(raw any) ValidationErrors {
	if raw == nil {
		return nil
	}

	ctx, def, err := fixturesSchema()
	if err != nil {
		return ValidationErrors{{Field: "schema", Message: err.Error(), Code: ErrSchema}}
	}

	// cue.Context is not safe for concurrent use.
	schemaMu.Lock()
	defer schemaMu.Unlock()

	v := ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return ValidationErrors{{Field: "document", Message: err.Error(), Code: ErrSchema}}
	}
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		var out ValidationErrors
		for _, e := range errors.Errors(err) {
			format, args := e.Msg()
			out = append(out, ValidationError{
				Field:   pathString(e.Path()),
				Message: fmt.Sprintf(format, args...),
				Code:    ErrSchema,
			})
		}
		return out
	}
	return nil
}

var schemaMu sync.Mutex

func pathString(path []string) string {
	if len(path) == 0 {
		return "document"
	}
	s := path[0]
	for _, p := range path[1:] {
		if len(p) > 0 && p[0] >= '0' && p[0] <= '9' {
			s += "[" + p + "]"
			continue
		}
		s += "." + p
	}
	return s
}
