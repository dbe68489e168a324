package applink

import (
	"fmt"
	"strings"

	"github.com/linked-planet/go-http-client/pkg/domainerr"
)

// MethodType is an HTTP method accepted by an application link.
type MethodType string

// Supported method types.
const (
	MethodGet     MethodType = "GET"
	MethodPost    MethodType = "POST"
	MethodPut     MethodType = "PUT"
	MethodDelete  MethodType = "DELETE"
	MethodHead    MethodType = "HEAD"
	MethodOptions MethodType = "OPTIONS"
	MethodTrace   MethodType = "TRACE"
	MethodPatch   MethodType = "PATCH"
)

var methodTypes = map[MethodType]struct{}{
	MethodGet:     {},
	MethodPost:    {},
	MethodPut:     {},
	MethodDelete:  {},
	MethodHead:    {},
	MethodOptions: {},
	MethodTrace:   {},
	MethodPatch:   {},
}

// ParseMethodType parses an upper-case method name. Names are matched
// exactly; "get" is rejected like any other unknown name.
func ParseMethodType(method string) (MethodType, error) {
	mt := MethodType(method)
	if _, ok := methodTypes[mt]; !ok {
		return "", domainerr.New(domainerr.CodeInvalidMethod,
			fmt.Sprintf("Method '%s' is not one of %s", method, methodList()))
	}
	return mt, nil
}

func methodList() string {
	return strings.Join([]string{
		string(MethodGet), string(MethodPost), string(MethodPut), string(MethodDelete),
		string(MethodHead), string(MethodOptions), string(MethodTrace), string(MethodPatch),
	}, ", ")
}
