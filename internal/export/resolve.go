package export

import (
	"fmt"
	"html"
	"html/template"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DateLayout is used for bare time.Time cell values.
const DateLayout = "2006-01-02"

// Display is implemented by values that carry their own cell text.
type Display interface {
	Text() string
}

type textDisplay string

func (t textDisplay) Text() string { return string(t) }

// Text wraps s so it is printed verbatim by every sink.
func Text(s string) Display {
	return textDisplay(s)
}

// Textf is Text with fmt formatting.
func Textf(format string, args ...any) Display {
	return textDisplay(fmt.Sprintf(format, args...))
}

// ResolveCell returns the display text of col for row. A Render func takes
// precedence; otherwise Accessor is looked up as a dotted path of struct fields
// (json tag or field name, case-insensitive) and string map keys. Missing values
// resolve to "".
func ResolveCell[T any](row T, col Column[T]) string {
	if col.Render != nil {
		return TextOf(col.Render(row))
	}
	v, ok := lookup(reflect.ValueOf(row), col.Accessor)
	if !ok {
		return ""
	}
	return TextOf(v.Interface())
}

// TextOf converts a rendered value into cell text.
func TextOf(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return ""
	}

	switch x := v.(type) {
	case string:
		return x
	case Display:
		return x.Text()
	case template.HTML:
		return stripTags(string(x))
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(DateLayout)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return TextOf(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func lookup(v reflect.Value, path string) (reflect.Value, bool) {
	if strings.TrimSpace(path) == "" {
		return reflect.Value{}, false
	}
	for _, part := range strings.Split(path, ".") {
		v = indirect(v)
		if !v.IsValid() {
			return reflect.Value{}, false
		}
		switch v.Kind() {
		case reflect.Struct:
			field, ok := fieldByName(v, part)
			if !ok {
				return reflect.Value{}, false
			}
			v = field
		case reflect.Map:
			keyType := v.Type().Key()
			if keyType.Kind() != reflect.String {
				return reflect.Value{}, false
			}
			elem := v.MapIndex(reflect.ValueOf(part).Convert(keyType))
			if !elem.IsValid() {
				return reflect.Value{}, false
			}
			v = elem
		default:
			return reflect.Value{}, false
		}
	}
	return v, v.IsValid()
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func fieldByName(v reflect.Value, name string) (reflect.Value, bool) {
	var fallback []int
	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		if tag := jsonName(field); tag != "" && tag == name {
			return fieldValue(v, field.Index)
		}
		if fallback == nil && strings.EqualFold(field.Name, name) {
			fallback = field.Index
		}
	}
	if fallback == nil {
		return reflect.Value{}, false
	}
	return fieldValue(v, fallback)
}

func fieldValue(v reflect.Value, index []int) (reflect.Value, bool) {
	field, err := v.FieldByIndexErr(index)
	if err != nil {
		return reflect.Value{}, false
	}
	return field, true
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}
