package importer_test

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomkit/internal/importer"
)

func TestFileStem_AllowedCharacters(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringOf(rapid.RuneFrom(nil, unicode.Letter, unicode.Digit, unicode.Punct, unicode.Space)).Draw(t, "name")
		stem := importer.FileStem(name)
		assert.NotEmpty(t, stem)
		for _, r := range stem {
			assert.True(t, r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
				"unexpected char %q in stem %q", r, stem)
		}
	})
}

func TestFileStem_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringOf(rapid.RuneFrom(nil, unicode.Letter, unicode.Digit, unicode.Punct, unicode.Space)).Draw(t, "name")
		stem := importer.FileStem(name)
		assert.Equal(t, stem, importer.FileStem(stem))
	})
}

func TestFileStem_KnownValues(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Room_Class_school0", "Room_Class_school0"},
		{"Room_Class_school_1", "Room_Class_school_1"},
		{"Room_Art Studio_east-wing", "Room_Art_Studio_east-wing"},
		{"Room_../../etc", "Room_etc"},
		{"  ", "room"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, importer.FileStem(tc.input))
		})
	}
}
