package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/lab67/orderdesk/internal/core/service"
)

var errUsage = errors.New("usage")

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

// splitArgs splits a command line on whitespace. Single or double quotes group
// words; a backslash escapes the next rune inside double quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quote == '"' && r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, usage("unterminated quote")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

// fieldAliases maps accepted keys to canonical field names.
var fieldAliases = map[string]string{
	"description":  "description",
	"desc":         "description",
	"created_at":   "created_at",
	"date":         "created_at",
	"author":       "author",
	"phone":        "phone",
	"service":      "service_type",
	"service_type": "service_type",
	"guests":       "guests",
	"status":       "status",
}

// parseFields turns key=value arguments into a field map.
func parseFields(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, usage("expected field=value, got %q", a)
		}
		name, known := fieldAliases[strings.ToLower(key)]
		if !known {
			return nil, usage("unknown field %q", key)
		}
		fields[name] = value
	}
	return fields, nil
}

func parseGuests(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, usage("guests must be a number, got %q", s)
	}
	return n, nil
}

func createForm(args []string) (service.CreateOrderForm, error) {
	fields, err := parseFields(args)
	if err != nil {
		return service.CreateOrderForm{}, err
	}
	for _, unsupported := range []string{"author", "created_at"} {
		if _, ok := fields[unsupported]; ok {
			return service.CreateOrderForm{}, usage("%s is set automatically on create", unsupported)
		}
	}

	form := service.CreateOrderForm{
		Description: fields["description"],
		Phone:       fields["phone"],
		ServiceType: fields["service_type"],
		Status:      fields["status"],
	}
	if g, ok := fields["guests"]; ok {
		if form.Guests, err = parseGuests(g); err != nil {
			return service.CreateOrderForm{}, err
		}
	}
	return form, nil
}

func editForm(args []string) (service.EditOrderForm, error) {
	fields, err := parseFields(args)
	if err != nil {
		return service.EditOrderForm{}, err
	}

	var form service.EditOrderForm
	set := func(name string) *string {
		if v, ok := fields[name]; ok {
			return &v
		}
		return nil
	}
	form.Description = set("description")
	form.CreatedAt = set("created_at")
	form.Author = set("author")
	form.Phone = set("phone")
	form.ServiceType = set("service_type")
	form.Status = set("status")
	if g, ok := fields["guests"]; ok {
		n, err := parseGuests(g)
		if err != nil {
			return service.EditOrderForm{}, err
		}
		form.Guests = &n
	}
	return form, nil
}

func filterForm(args []string) (service.FilterForm, error) {
	fields, err := parseFields(args)
	if err != nil {
		return service.FilterForm{}, err
	}
	for name := range fields {
		if name != "author" && name != "status" {
			return service.FilterForm{}, usage("can only filter by author and status")
		}
	}
	return service.FilterForm{Author: fields["author"], Status: fields["status"]}, nil
}
