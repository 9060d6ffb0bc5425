// Package api is the typed catalogue of the judge backend endpoints.
package api

import (
	"net/http"
	"reflect"
	"sort"
	"strings"
)

// Signature identifies an endpoint by verb and path. Payload and query are not part of it.
type Signature struct {
	Method string
	Path   string
}

// Key is the cache and dedup key, e.g. "get:/auth/info".
func (s Signature) Key() string {
	return strings.ToLower(s.Method) + ":" + s.Path
}

func (s Signature) String() string {
	return strings.ToUpper(s.Method) + " " + s.Path
}

// Endpoint binds a signature to its payload type P and return type R.
type Endpoint[P, R any] struct {
	sig         Signature
	doc         string
	constraints []string
}

// Signature returns the endpoint identity.
func (e Endpoint[P, R]) Signature() Signature {
	return e.sig
}

// Descriptor describes the endpoint for listings.
func (e Endpoint[P, R]) Descriptor() Descriptor {
	return Descriptor{
		Signature:   e.sig,
		Payload:     typeName[P](),
		Return:      typeName[R](),
		Doc:         e.doc,
		Constraints: append([]string(nil), e.constraints...),
	}
}

func newEndpoint[P, R any](method, path, doc string, constraints []string) Endpoint[P, R] {
	e := Endpoint[P, R]{
		sig:         Signature{Method: method, Path: path},
		doc:         doc,
		constraints: constraints,
	}
	catalogue = append(catalogue, e.Descriptor())
	return e
}

// Get declares a read endpoint; its payload travels in the query string.
func Get[P, R any](path, doc string, constraints ...string) Endpoint[P, R] {
	return newEndpoint[P, R](http.MethodGet, path, doc, constraints)
}

// Post declares a mutating endpoint; its payload travels as JSON or multipart body.
func Post[P, R any](path, doc string, constraints ...string) Endpoint[P, R] {
	return newEndpoint[P, R](http.MethodPost, path, doc, constraints)
}

// Delete declares a delete endpoint with a JSON body.
func Delete[P, R any](path, doc string, constraints ...string) Endpoint[P, R] {
	return newEndpoint[P, R](http.MethodDelete, path, doc, constraints)
}

// Descriptor is the untyped view of an endpoint.
type Descriptor struct {
	Signature   Signature
	Payload     string
	Return      string
	Doc         string
	Constraints []string
}

var catalogue []Descriptor

// Catalogue lists every declared endpoint sorted by key.
func Catalogue() []Descriptor {
	out := make([]Descriptor, len(catalogue))
	copy(out, catalogue)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Signature.Key() < out[j].Signature.Key()
	})
	return out
}

// Lookup finds a declared endpoint by method and path.
func Lookup(method, path string) (Descriptor, bool) {
	key := Signature{Method: method, Path: path}.Key()
	for _, d := range catalogue {
		if d.Signature.Key() == key {
			return d, true
		}
	}
	return Descriptor{}, false
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return "bytes"
	}
	return t.String()
}
