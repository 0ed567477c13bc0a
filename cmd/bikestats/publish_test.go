package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/bikestats/pkg/models"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", got.Format(time.DateOnly))

	got, err = parseDate("7d")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), got, time.Minute)

	for _, bad := range []string{"", "d", "yesterday", "2024/03/05", "xd"} {
		_, err := parseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseRange(t *testing.T) {
	since, until, err := parseRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", since)
	assert.Equal(t, "2024-01-31", until)

	since, until, err = parseRange("", "")
	require.NoError(t, err)
	assert.Empty(t, since)
	assert.Empty(t, until)

	_, _, err = parseRange("soon", "")
	assert.ErrorContains(t, err, "--since")
}

func TestFilterRange(t *testing.T) {
	data := []models.BikeUsage{{Date: "2024-01-01"}, {Date: "2024-01-02"}, {Date: "2024-01-03"}}

	assert.Len(t, filterRange(data, "", ""), 3)

	got := filterRange(data, "2024-01-02", "")
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", got[0].Date)

	got = filterRange(data, "2024-01-02", "2024-01-02")
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-02", got[0].Date)
}
