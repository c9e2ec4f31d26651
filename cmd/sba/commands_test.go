package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSuggestCmd(t *testing.T) {
	out, err := execute(newSuggestCmd(), "yucca")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "1. quillaja: Functional saponin surfactant; globally more available - "), lines[0])
	assert.Equal(t, "2. soapwort", strings.SplitN(lines[1], ":", 2)[0])
	assert.True(t, strings.HasSuffix(lines[2], " - 0.5-25 % v/v (typical 5 % v/v)"), lines[2])
}

func TestSuggestCmd_Errors(t *testing.T) {
	_, err := execute(newSuggestCmd(), "unobtainium")
	assert.EqualError(t, err, `unknown ingredient "unobtainium"`)

	_, err = execute(newSuggestCmd(), "yucca", "--role", "fertilizer")
	assert.EqualError(t, err, `unknown role "fertilizer"`)

	_, err = execute(newSuggestCmd())
	assert.Error(t, err)
}

func TestRecipeCmd_Text(t *testing.T) {
	out, err := execute(newRecipeCmd())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Stage: late-flower\nVolume: 20 L\nAloe: 5% v/v\n\n"), out)
	assert.Contains(t, out, "Aloe vera juice: 50 ml per L (1000 ml total)\n")
	assert.Contains(t, out, "Molasses: 5 ml per L (100 ml total)")
}

func TestRecipeCmd_CSV(t *testing.T) {
	out, err := execute(newRecipeCmd(), "--format", "csv", "--volume", "10", "--carbs-dose", "7")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "id,name,amount,note", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "aloe,Aloe vera juice,50 ml per L (500 ml total)"), lines[1])
	assert.True(t, strings.HasPrefix(lines[4], "molasses,Molasses,5 ml per L (50 ml total)"), lines[4])
}

func TestRecipeCmd_Errors(t *testing.T) {
	cases := map[string][]string{
		"unknown format": {"--format", "pdf"},
		"unknown stage":  {"--stage", "harvest"},
		"zero volume":    {"--volume", "0"},
		"bad carb unit":  {"--carbs-unit", "oz"},
		"bad carb key":   {"--carbs-source-key", "honey"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := execute(newRecipeCmd(), args...)
			assert.Error(t, err)
		})
	}

	_, err := execute(newRecipeCmd(), "--format", "pdf")
	assert.EqualError(t, err, `unsupported format "pdf"`)
}

func TestCatalogCmd_RoleFilter(t *testing.T) {
	out, err := execute(newCatalogCmd(), "--role", "prebiotic")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, out, "molasses")

	_, err = execute(newCatalogCmd(), "--role", "fertilizer")
	assert.Error(t, err)
}
