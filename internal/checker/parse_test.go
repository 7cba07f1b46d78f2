package checker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractHiddenInput(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
		found    bool
	}{
		{
			name:     "Token present",
			body:     `<form><input type="hidden" name="tok" value="abc123"><input type="submit"></form>`,
			expected: "abc123",
			found:    true,
		},
		{
			name:     "Uppercase attributes",
			body:     `<INPUT TYPE="hidden" NAME="tok" VALUE="XYZ">`,
			expected: "XYZ",
			found:    true,
		},
		{
			name:  "Wrong name",
			body:  `<input type="hidden" name="csrf" value="abc123">`,
			found: false,
		},
		{
			name:  "Visible input is skipped",
			body:  `<input type="text" name="tok" value="abc123">`,
			found: false,
		},
		{
			name:  "Empty value",
			body:  `<input type="hidden" name="tok" value="">`,
			found: false,
		},
		{
			name:  "Empty document",
			body:  ``,
			found: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			value, ok := extractHiddenInput([]byte(testCase.body), "tok")
			require.Equal(t, testCase.found, ok)
			require.Equal(t, testCase.expected, value)
		})
	}
}

func TestClientRedirectTarget(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected string
		found    bool
	}{
		{
			name:     "Window location",
			body:     `<script>window.location = "inicio.php";</script>`,
			expected: "inicio.php",
			found:    true,
		},
		{
			name:     "Window location href",
			body:     `<script>window.location.href='login.php?err=1';</script>`,
			expected: "login.php?err=1",
			found:    true,
		},
		{
			name:     "Meta refresh",
			body:     `<meta http-equiv="refresh" content="0; url=estado.php">`,
			expected: "estado.php",
			found:    true,
		},
		{
			name:  "No redirect",
			body:  `<html><body>hello</body></html>`,
			found: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			target, ok := clientRedirectTarget([]byte(testCase.body))
			require.Equal(t, testCase.found, ok)
			require.Equal(t, testCase.expected, target)
		})
	}
}

func TestExtractStatusText(t *testing.T) {
	t.Run("Marker cell with nested markup", func(t *testing.T) {
		body := `<table><tr>
			<td style="background-color: salmon">
				<b>Pedido em an&aacute;lise</b><br>
				&nbsp; Aguarde &nbsp;
			</td>
		</tr></table>`

		text, ok := extractStatusText([]byte(body))
		require.True(t, ok)
		require.Equal(t, "Pedido em análise\nAguarde", text)
	})

	t.Run("Case-insensitive style match", func(t *testing.T) {
		body := `<table><tr><td style="BACKGROUND-COLOR: Salmon">ok</td></tr></table>`

		text, ok := extractStatusText([]byte(body))
		require.True(t, ok)
		require.Equal(t, "ok", text)
	})

	t.Run("No marker cell", func(t *testing.T) {
		body := `<table><tr><td style="background-color: white">nope</td></tr></table>`

		_, ok := extractStatusText([]byte(body))
		require.False(t, ok)
	})

	t.Run("Salmon without background property", func(t *testing.T) {
		body := `<table><tr><td style="color: salmon">nope</td></tr></table>`

		_, ok := extractStatusText([]byte(body))
		require.False(t, ok)
	})
}

func TestSanitizeText(t *testing.T) {
	require.Equal(t, "a\nb", sanitizeText("  a  \n\n   \n b "))
	require.Equal(t, "", sanitizeText(" \n   \n"))
}
