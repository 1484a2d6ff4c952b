package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/typetoreveal/internal/devanagari"
)

func TestParseSchemes(t *testing.T) {
	got, err := parseSchemes("iast, Harvard-Kyoto,,")
	require.NoError(t, err)
	assert.Equal(t, []devanagari.Scheme{devanagari.IAST, devanagari.HarvardKyoto}, got)

	_, err = parseSchemes("itrans,velthuis")
	assert.ErrorIs(t, err, devanagari.ErrUnknownScheme)

	_, err = parseSchemes(" , ")
	assert.Error(t, err)
}
