package resource_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/rigparts/pkg/resource"
)

type part struct {
	ID     uint
	Name   string
	Secret string
}

var partResource = resource.TransformerFunc[part](func(p part) resource.Map {
	return resource.Map{"id": p.ID, "name": p.Name}
})

func TestResourceHidesUnlistedFields(t *testing.T) {
	raw, err := json.Marshal(resource.New[part](partResource, part{ID: 1, Name: "Drum", Secret: "cost"}).With("in_cart", true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Drum","in_cart":true}`, string(raw))
}

func TestCollection(t *testing.T) {
	out := resource.Collection[part](partResource, []part{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}})
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[1]["name"])

	assert.NotNil(t, resource.Collection[part](partResource, nil))
}
