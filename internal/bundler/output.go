package bundler

import (
	"bytes"

	"github.com/gadgetry/gadgetc/internal/filemap"
)

// Output is the compiled code of one bundle run.
type Output struct {
	mapping *filemap.Mapping
	js      map[string][]byte // entry name → compiled script
	css     map[string][]byte // entry name → compiled stylesheet
}

func newOutput(m *filemap.Mapping) *Output {
	return &Output{
		mapping: m,
		js:      make(map[string][]byte),
		css:     make(map[string][]byte),
	}
}

// Script returns the compiled script of an entry, or nil.
func (o *Output) Script(entry string) []byte { return o.js[entry] }

// Style returns the compiled stylesheet of an entry, or nil. Script entries
// have one when they import CSS.
func (o *Output) Style(entry string) []byte { return o.css[entry] }

// Gadget assembles the payloads of one gadget: its scripts concatenated in
// declaration order, and its stylesheet followed by any CSS its scripts
// import. A payload is nil when any part of it was not produced.
func (o *Output) Gadget(name string) (script, style []byte) {
	var scripts, styles [][]byte
	missingScript, missingStyle := false, false
	for _, e := range o.mapping.GadgetEntries(name) {
		switch e.Kind {
		case filemap.Script:
			js, ok := o.js[e.Name]
			if !ok {
				missingScript = true
				continue
			}
			scripts = append(scripts, js)
		case filemap.Style:
			css, ok := o.css[e.Name]
			if !ok {
				missingStyle = true
				continue
			}
			styles = append([][]byte{css}, styles...)
		}
	}
	for _, e := range o.mapping.GadgetEntries(name) {
		if css, ok := o.css[e.Name]; ok && e.Kind == filemap.Script {
			styles = append(styles, css)
		}
	}

	if len(scripts) > 0 && !missingScript {
		script = join(scripts)
	}
	if len(styles) > 0 && !missingStyle {
		style = join(styles)
	}
	return script, style
}

// join concatenates parts on line boundaries. The result is never nil, so
// a gadget whose compiled parts are all empty still has a payload.
func join(parts [][]byte) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 64))
	for i, p := range parts {
		if i > 0 && buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.Write(p)
	}
	return buf.Bytes()
}
