package api

import (
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/pingleware/metratrader-bridge/internal/model"
)

// maxBodyBytes bounds request bodies; a full history payload is well below it.
const maxBodyBytes = 4 << 20

// args holds the string-typed arguments of one request and records the first
// coercion failure. Accessors return zero values once an error is recorded.
type args struct {
	vals map[string][]string
	err  error
}

// pathArgs splits the comma-separated {args} path segment into names.
func pathArgs(r *http.Request, names ...string) *args {
	a := &args{vals: make(map[string][]string, len(names))}
	raw := r.PathValue("args")
	parts := strings.Split(raw, ",")
	if raw == "" {
		parts = nil
	}
	if len(parts) != len(names) {
		a.err = errors.Errorf("expected %d arguments (%s), got %d", len(names), strings.Join(names, ","), len(parts))
		return a
	}
	for i, name := range names {
		a.vals[name] = []string{strings.TrimSpace(parts[i])}
	}
	return a
}

// bodyArgs reads a JSON or form body into args. JSON values that are not
// strings are kept in their JSON text form.
func bodyArgs(r *http.Request) *args {
	a := &args{vals: make(map[string][]string)}
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "application/json" {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			a.err = errors.Wrap(err, "reading body")
			return a
		}
		var doc map[string]any
		if err := sonic.Unmarshal(data, &doc); err != nil {
			a.err = errors.Wrap(err, "decoding JSON body")
			return a
		}
		for k, v := range doc {
			switch val := v.(type) {
			case string:
				a.vals[k] = []string{val}
			case nil:
			default:
				text, err := sonic.MarshalString(val)
				if err != nil {
					a.err = errors.Wrapf(err, "argument %q", k)
					return a
				}
				a.vals[k] = []string{text}
			}
		}
		return a
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		a.err = errors.Wrap(err, "parsing form body")
		return a
	}
	for k, v := range r.PostForm {
		a.vals[strings.TrimSuffix(k, "[]")] = v
	}
	return a
}

func (a *args) Err() error {
	return a.err
}

func (a *args) raw(name string) (string, bool) {
	if a.err != nil {
		return "", false
	}
	v, ok := a.vals[name]
	if !ok || len(v) == 0 {
		a.err = errors.Errorf("missing argument %q", name)
		return "", false
	}
	return v[0], true
}

// String returns the argument verbatim.
func (a *args) String(name string) string {
	v, _ := a.raw(name)
	return v
}

// OptionalString returns the argument or def when it is absent.
func (a *args) OptionalString(name, def string) string {
	if v, ok := a.vals[name]; ok && len(v) > 0 {
		return v[0]
	}
	return def
}

func (a *args) Int64(name string) int64 {
	v, ok := a.raw(name)
	if !ok {
		return 0
	}
	n, err := parseInt(v)
	if err != nil {
		a.err = errors.Wrapf(err, "argument %q", name)
		return 0
	}
	return n
}

func (a *args) Int(name string) int {
	n := a.Int64(name)
	if n > math.MaxInt32 || n < math.MinInt32 {
		if a.err == nil {
			a.err = errors.Errorf("argument %q: %d out of range", name, n)
		}
		return 0
	}
	return int(n)
}

func (a *args) Float(name string) float64 {
	v, ok := a.raw(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		if err == nil {
			err = errors.New("not a finite number")
		}
		a.err = errors.Wrapf(err, "argument %q", name)
		return 0
	}
	return f
}

// OptionalFloat returns the argument or def when it is absent or blank.
func (a *args) OptionalFloat(name string, def float64) float64 {
	if v, ok := a.vals[name]; !ok || len(v) == 0 || strings.TrimSpace(v[0]) == "" {
		return def
	}
	return a.Float(name)
}

// Strings accepts a JSON array, repeated form values or a comma-separated list.
func (a *args) Strings(name string) []string {
	if a.err != nil {
		return nil
	}
	v, ok := a.vals[name]
	if !ok || len(v) == 0 {
		a.err = errors.Errorf("missing argument %q", name)
		return nil
	}
	if len(v) > 1 {
		return v
	}
	s := strings.TrimSpace(v[0])
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := sonic.UnmarshalString(s, &out); err != nil {
			a.err = errors.Wrapf(err, "argument %q", name)
			return nil
		}
		return out
	}
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseInt accepts integers and integral floats such as "3.0".
func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return n, nil
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil || math.IsNaN(f) {
		return 0, err
	}
	return model.IntegralInt64(f)
}
