package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	base := fmt.Errorf("dial tcp: refused")
	err := Wrap(CodeLLMError, "chatgpt request failed", base)

	require.True(t, IsCode(err, CodeLLMError))
	require.False(t, IsCode(err, CodeInvalidInput))
	require.ErrorIs(t, err, base)
	require.Equal(t, "chatgpt request failed: dial tcp: refused", err.Error())
}

func TestCodeOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", Wrap(CodeWeatherError, "upstream down", nil))
	require.Equal(t, CodeWeatherError, CodeOf(err))
	require.Equal(t, "", CodeOf(fmt.Errorf("plain")))
}
