package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hagborg/kin-go/internal/person"
)

func TestParseReference(t *testing.T) {
	t.Parallel()

	t.Run("NameWithLineage", func(t *testing.T) {
		t.Parallel()
		name, lineage, ok := ParseReference("Walter Arnold Hagborg [Hagborg-Hansson]")

		require.True(t, ok)
		assert.Equal(t, "Walter Arnold Hagborg", name)
		assert.Equal(t, "Hagborg-Hansson", lineage)
	})

	t.Run("BareName", func(t *testing.T) {
		t.Parallel()
		name, lineage, ok := ParseReference("Walter Hagborg")

		require.True(t, ok)
		assert.Equal(t, "Walter Hagborg", name)
		assert.Empty(t, lineage)
	})

	t.Run("Blank", func(t *testing.T) {
		t.Parallel()
		_, _, ok := ParseReference("   ")

		assert.False(t, ok)
	})

	t.Run("BracketsInName", func(t *testing.T) {
		t.Parallel()
		// Only the last bracket pair is the lineage tag.
		name, lineage, ok := ParseReference("Anna [the Elder] Svensson [Svensson]")

		require.True(t, ok)
		assert.Equal(t, "Anna [the Elder] Svensson", name)
		assert.Equal(t, "Svensson", lineage)
	})
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "walter a hagborg", NormalizeName("Walter A. Hagborg"))
	assert.Equal(t, "hagborg hansson", NormalizeName("Hagborg-Hansson"))
	assert.Equal(t, "anna maria", NormalizeName("  Anna   Maria  "))
	assert.Equal(t, "oneill", NormalizeName("O'Neill"))
	assert.Equal(t, NormalizeName("MARY JANE"), NormalizeName("mary-jane"))
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	store := person.NewStore([]*person.Record{
		{ID: "p1", Name: "Walter Hagborg", LineageName: "Hagborg-Hansson"},
		{ID: "p2", Name: "Anna Svensson", LineageName: "Svensson"},
		{ID: "p3", Name: "John Smith", LineageName: "Smith"},
		{ID: "p4", Name: "John Smith", LineageName: "Smith"},
	})
	r := NewResolver(store)

	t.Run("ExactMatch", func(t *testing.T) {
		t.Parallel()
		id, diag, ok := r.Resolve("Walter Hagborg [Hagborg-Hansson]")

		require.True(t, ok)
		assert.Equal(t, "p1", id)
		assert.Nil(t, diag)
	})

	t.Run("CaseAndPunctuationInsensitive", func(t *testing.T) {
		t.Parallel()
		id, diag, ok := r.Resolve("anna  svensson [SVENSSON]")

		require.True(t, ok)
		assert.Equal(t, "p2", id)
		assert.Nil(t, diag)
	})

	t.Run("Blank", func(t *testing.T) {
		t.Parallel()
		_, diag, ok := r.Resolve("")

		assert.False(t, ok)
		assert.Nil(t, diag)
	})

	t.Run("Unresolved", func(t *testing.T) {
		t.Parallel()
		_, diag, ok := r.Resolve("Nobody Known [Smith]")

		assert.False(t, ok)
		require.NotNil(t, diag)
		assert.Equal(t, DiagUnresolved, diag.Kind)
		assert.Equal(t, "Nobody Known [Smith]", diag.Reference)
	})

	t.Run("AmbiguousFirstInLoadOrder", func(t *testing.T) {
		t.Parallel()
		id, diag, ok := r.Resolve("John Smith [Smith]")

		require.True(t, ok)
		assert.Equal(t, "p3", id)
		require.NotNil(t, diag)
		assert.Equal(t, DiagAmbiguous, diag.Kind)
		assert.Equal(t, []string{"p3", "p4"}, diag.Candidates)
	})

	t.Run("LineageMismatch", func(t *testing.T) {
		t.Parallel()
		_, diag, ok := r.Resolve("Walter Hagborg [Svensson]")

		assert.False(t, ok)
		require.NotNil(t, diag)
		assert.Equal(t, DiagUnresolved, diag.Kind)
	})
}
