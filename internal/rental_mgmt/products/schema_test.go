package products

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The store's column list must stay in sync with the shipped DDL, or every
// catalog query fails with ER_BAD_FIELD_ERROR.
func TestProductColsMatchDDL(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "schema.sql"))
	require.NoError(t, err)

	ddl := productsTableBody(t, string(raw))
	for _, col := range strings.Split(productCols, ",") {
		col = strings.TrimSpace(col)
		require.Contains(t, ddl, col+" ", "column %q missing from products DDL", col)
	}
}

func productsTableBody(t *testing.T, schema string) string {
	t.Helper()
	const marker = "CREATE TABLE IF NOT EXISTS products ("
	start := strings.Index(schema, marker)
	require.GreaterOrEqual(t, start, 0, "products DDL not found")
	rest := schema[start+len(marker):]
	end := strings.Index(rest, "ENGINE=")
	require.GreaterOrEqual(t, end, 0)
	return rest[:end]
}
