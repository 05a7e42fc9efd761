package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"}, {"migrate"}, {"seed"}, {"export"}, {"checkout"}, {"orders"}, {"login"},
		{"cart", "add"}, {"cart", "list"}, {"cart", "remove"}, {"cart", "update"}, {"cart", "clear"},
	} {
		c, rest, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}

func TestCheckoutRequiresAddress(t *testing.T) {
	for _, name := range []string{"street", "city", "state", "zip"} {
		f := checkoutCmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, []string{"true"}, f.Annotations["cobra_annotation_bash_completion_one_required_flag"], name)
	}
}

func TestIsOrderStatus(t *testing.T) {
	assert.True(t, isOrderStatus("out_for_delivery"))
	assert.False(t, isOrderStatus("lost"))
}
