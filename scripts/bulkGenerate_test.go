package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	csv := "Context,uid,name\n" +
		"\"The sky is blue. Water boils at 100 degrees.\",u1,science\n" +
		",u2,empty\n" +
		"Cats purr.,u3\n" +
		"Rome is in Italy.,u4, geography \n"

	rows, skipped, err := readRows(strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []bulkRow{
		{Line: 2, UserID: "u1", Name: "science", Context: "The sky is blue. Water boils at 100 degrees."},
		{Line: 5, UserID: "u4", Name: "geography", Context: "Rome is in Italy."},
	}, rows)
}

func TestReadRowsRejectsBadHeader(t *testing.T) {
	_, _, err := readRows(strings.NewReader("uid,topic,context\nu1,sky,text\n"))
	assert.Error(t, err)

	_, _, err = readRows(strings.NewReader("uid,name,context\n"))
	assert.Error(t, err)
}
