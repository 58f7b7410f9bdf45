package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
businesses:
  - name: Sunrise Bakery
    phone: "020 2553 1234"
    address: 12 FC Road, Pune, Maharashtra
    website: http://sunrise-bakery.example
  - name: Crust & Crumb
    address: 4 MG Road, Pune, Maharashtra
    facebook_url: https://facebook.com/crustandcrumb
  - name: Mumbai Breads
    address: 9 Linking Road, Mumbai, Maharashtra
  - name: Pune Tailors
    category: Tailor
    address: 1 JM Road, Pune, Maharashtra
  - name: ""
    address: nameless, Pune
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSource_Discover(t *testing.T) {
	src := NewFileSource(writeFixture(t, fixtureYAML))
	assert.Equal(t, "file", src.Name())

	got, err := src.Discover(context.Background(), bakeryCriteria(10))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Sunrise Bakery", got[0].Name)
	assert.Equal(t, "Bakery", got[0].Category)
	assert.Equal(t, "http://sunrise-bakery.example", got[0].Website)
	assert.Equal(t, "Crust & Crumb", got[1].Name)
	assert.False(t, got[1].HasWebsite())
	assert.Equal(t, "https://facebook.com/crustandcrumb", got[1].FacebookURL)
}

func TestFileSource_FallsBackToAllWhenCityAbsent(t *testing.T) {
	src := NewFileSource(writeFixture(t, fixtureYAML))

	c := bakeryCriteria(10)
	c.City = "Nagpur"
	got, err := src.Discover(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFileSource_Truncates(t *testing.T) {
	src := NewFileSource(writeFixture(t, fixtureYAML))

	got, err := src.Discover(context.Background(), bakeryCriteria(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sunrise Bakery", got[0].Name)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).Discover(context.Background(), bakeryCriteria(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file source: read")

	_, err = NewFileSource(writeFixture(t, "businesses: [oops")).Discover(context.Background(), bakeryCriteria(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file source: parse")
}
