package api

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
)

// A Key is a parsed version of the possibly dot-separated key to lookup. The
// parts of a key are strings or integers. Quoted segments are retained as one
// part, so `a.'b.c'` has the two parts `a` and `b.c`.
type Key interface {
	// Dig returns the result of using the parts beyond the root to descend
	// into the given value. Nil is returned unless every part hits an
	// existing map entry or a valid array index.
	Dig(v dgo.Value) dgo.Value

	// Parts returns the parts of this key. Each part is either a string or
	// an int value.
	Parts() []interface{}

	// Root returns the first part.
	Root() string

	// Source returns the string that this key was created from.
	Source() string
}

type key struct {
	source string
	parts  []interface{}
}

// NewKey parses the given string into a Key. A panic is raised when the
// string contains an empty segment, an unterminated quote, or starts with
// an index segment.
func NewKey(str string) Key {
	b := bytes.NewBufferString(``)
	return &key{str, parseUnquoted(b, str, str, []interface{}{})}
}

func (k *key) Dig(v dgo.Value) dgo.Value {
	for i := 1; i < len(k.parts); i++ {
		p := k.parts[i]
		switch vc := v.(type) {
		case dgo.Array:
			if ix, ok := p.(int); ok && ix >= 0 && ix < vc.Len() {
				v = vc.Get(ix)
				continue
			}
		case dgo.Map:
			var kx dgo.Value
			if ix, ok := p.(int); ok {
				kx = vf.Integer(int64(ix))
			} else {
				kx = vf.String(p.(string))
			}
			if e := vc.Get(kx); e != nil {
				v = e
				continue
			}
		}
		return nil
	}
	return v
}

func (k *key) Parts() []interface{} {
	return k.parts
}

func (k *key) Root() string {
	return k.parts[0].(string)
}

func (k *key) Source() string {
	return k.source
}

func (k *key) String() string {
	return k.source
}

func parseUnquoted(b *bytes.Buffer, key, part string, parts []interface{}) []interface{} {
	mungedPart := func(ix int, part string) interface{} {
		if i, err := strconv.ParseInt(part, 10, 32); err == nil {
			if ix == 0 {
				panic(fmt.Errorf(`key '%s' first segment cannot be an index`, key))
			}
			return int(i)
		}
		if part == `` {
			panic(fmt.Errorf(`key '%s' contains an empty segment`, key))
		}
		return part
	}

	for i, c := range part {
		switch c {
		case '\'', '"':
			return parseQuoted(b, c, key, part[i+1:], parts)
		case '.':
			parts = append(parts, mungedPart(len(parts), b.String()))
			b.Reset()
		default:
			_, _ = b.WriteRune(c)
		}
	}
	return append(parts, mungedPart(len(parts), b.String()))
}

func parseQuoted(b *bytes.Buffer, q rune, key, part string, parts []interface{}) []interface{} {
	for i, c := range part {
		if c == q {
			if i == len(part)-1 {
				return append(parts, b.String())
			}
			return parseUnquoted(b, key, part[i+1:], parts)
		}
		_, _ = b.WriteRune(c)
	}
	panic(fmt.Errorf(`unterminated quote in key '%s'`, key))
}
