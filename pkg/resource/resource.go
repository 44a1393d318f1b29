// Package resource shapes models into API output.
//
// A transformer decides exactly which fields leave the server:
//
//	type CategoryResource struct{}
//
//	func (CategoryResource) ToArray(c models.Category) resource.Map {
//	    return resource.Map{"id": c.ID, "name": c.Name, "slug": c.Slug}
//	}
//
//	c.Success(resource.New[models.Category](CategoryResource{}, cat))
//	c.Paginated(resource.Collection[models.Category](CategoryResource{}, cats), pg)
package resource

import "encoding/json"

// Map is the output of ToArray.
type Map = map[string]any

// Transformer converts one model into a Map.
type Transformer[T any] interface {
	ToArray(v T) Map
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc[T any] func(v T) Map

func (f TransformerFunc[T]) ToArray(v T) Map { return f(v) }

// Resource is a single transformed model. It marshals to the Map, merged
// with any extra fields set through With.
type Resource[T any] struct {
	transformer Transformer[T]
	data        T
	extra       Map
}

func New[T any](t Transformer[T], data T) *Resource[T] {
	return &Resource[T]{transformer: t, data: data}
}

// With adds a top-level field next to the transformed ones.
func (r *Resource[T]) With(key string, value any) *Resource[T] {
	if r.extra == nil {
		r.extra = Map{}
	}
	r.extra[key] = value
	return r
}

// ToMap returns the transformed fields.
func (r *Resource[T]) ToMap() Map {
	out := r.transformer.ToArray(r.data)
	for k, v := range r.extra {
		out[k] = v
	}
	return out
}

func (r *Resource[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// Collection transforms every item; a nil slice becomes an empty list.
func Collection[T any](t Transformer[T], items []T) []Map {
	out := make([]Map, 0, len(items))
	for _, item := range items {
		out = append(out, t.ToArray(item))
	}
	return out
}
