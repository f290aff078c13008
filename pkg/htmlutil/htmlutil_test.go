package htmlutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectionText(t *testing.T) {
	doc, err := ParseDocument(context.Background(), []byte(`
		<table><tr>
			<td><div>6.000%</div>
			    <div>30 Days</div></td>
			<td>100.948<br>$5,689.20</td>
		</tr></table>`))
	require.NoError(t, err)

	cells := doc.Find("td")
	require.Equal(t, 2, cells.Length())
	require.Equal(t, "6.000%\n30 Days", SelectionText(cells.Eq(0)))
	require.Equal(t, "100.948\n$5,689.20", SelectionText(cells.Eq(1)))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b\nc", CleanText("  a \t b \n\n   c \u0007"))
}
