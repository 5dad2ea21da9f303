package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagValidate(t *testing.T) {
	ok := &Tag{Name: "  Deep work ", Color: "#1E90ff"}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, "Deep work", ok.Name, "name should be trimmed")

	assert.NoError(t, (&Tag{Name: "Short", Color: "#abc"}).Validate())

	assert.ErrorIs(t, (&Tag{Name: "", Color: "#abc"}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Tag{Name: "x", Color: "red"}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Tag{Name: "x", Color: "#abcd"}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&Tag{Name: strings.Repeat("a", 65), Color: "#abc"}).Validate(), ErrValidation)
}

func TestUserLocation(t *testing.T) {
	var nilUser *User
	assert.Equal(t, "UTC", nilUser.Location().String())
	assert.Equal(t, "UTC", (&User{}).Location().String())
	assert.Equal(t, "UTC", (&User{Timezone: "Mars/Olympus"}).Location().String())
	assert.Equal(t, "Europe/Berlin", (&User{Timezone: "Europe/Berlin"}).Location().String())
}

func TestValidateSettings(t *testing.T) {
	assert.NoError(t, ValidateSettings(json.RawMessage(`{"theme":"dark"}`)))
	assert.NoError(t, ValidateSettings(json.RawMessage(`{}`)))
	assert.ErrorIs(t, ValidateSettings(json.RawMessage(`[]`)), ErrValidation)
	assert.ErrorIs(t, ValidateSettings(json.RawMessage(`null`)), ErrValidation)
	assert.ErrorIs(t, ValidateSettings(json.RawMessage(`"x"`)), ErrValidation)
}
